package grid

// GetGridCoords converts a linear cell index into (x, y) coordinates on a
// grid with the given number of columns.
func GetGridCoords(index int, cols int) (int, int) {
	return index % cols, index / cols
}

// CellOrigin returns the top-left pixel of the cell at index on a grid with
// the given number of columns and square cells of cellSize pixels.
func CellOrigin(index, cols, cellSize int) (int, int) {
	x, y := GetGridCoords(index, cols)
	return x * cellSize, y * cellSize
}

// Rows is the number of grid rows needed to hold count cells.
func Rows(count, cols int) int {
	return (count + cols - 1) / cols
}
