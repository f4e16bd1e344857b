package sweep

// Pick returns the entry of table for 1-based curve index i, wrapping
// every len(table) entries: Pick(t, 1) is t[0], and with a 3-value table
// Pick(t, 4) is t[0] again. Curve indices therefore cycle the table while
// the factor and label lists, indexed directly, do not.
func Pick(table []float64, i int) float64 {
	return table[(i-1)%len(table)]
}
