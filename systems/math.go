package systems

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// wrapCoord teleports a coordinate that left [-scale, scale] to the opposite
// face. A coordinate exactly on a face stays put.
func wrapCoord(v, scale float32) float32 {
	if v < -scale {
		return scale
	}
	if v > scale {
		return -scale
	}
	return v
}
