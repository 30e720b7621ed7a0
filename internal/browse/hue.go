package browse

// PlaceholderHue derives a stable hue (0-359) from a title, used to colour
// movies that have no poster. It matches the hash browser clients compute
// over UTF-16 code units, with negative hues wrapped the way CSS hsl() does.
func PlaceholderHue(title string) int {
	var h int64
	for _, c := range utf16Units(title) {
		// Only the shift operand is truncated to 32 bits.
		h = int64(c) + int64(int32(h)<<5) - h
	}
	hue := int(h % 360)
	if hue < 0 {
		hue += 360
	}
	return hue
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}
