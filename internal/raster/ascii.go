package raster

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse reads an Esri ASCII grid. Header lines may appear in any order;
// the lower-left origin may be given as corner or center coordinates and
// is normalized to the corner. NODATA_VALUE is optional and defaults to
// DefaultNoData.
func Parse(reader io.Reader) (*Grid, error) {
	grid := &Grid{NoDataValue: DefaultNoData}
	remainingHeaders := []string{"NCOLS", "NROWS", "XLLCENTER", "XLLCORNER", "YLLCENTER", "YLLCORNER", "CELLSIZE", "NODATA_VALUE"}
	stillIsHeader := true
	centerOrigin := false
	rowIndex := uint(0)
	var data [][]float64

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		keyword := strings.ToUpper(fields[0])

		if stillIsHeader && contains(remainingHeaders, keyword) {
			remainingHeaders = remove(remainingHeaders, keyword)

			// the origin is either corner or center, never both
			if keyword == "XLLCENTER" || keyword == "YLLCENTER" {
				centerOrigin = true
				remainingHeaders = remove(remainingHeaders, "XLLCORNER")
				remainingHeaders = remove(remainingHeaders, "YLLCORNER")
			}
			if keyword == "XLLCORNER" || keyword == "YLLCORNER" {
				remainingHeaders = remove(remainingHeaders, "XLLCENTER")
				remainingHeaders = remove(remainingHeaders, "YLLCENTER")
			}

			if err := parseHeaderLine(fields, grid); err != nil {
				return nil, err
			}
		} else {
			if stillIsHeader {
				// NODATA_VALUE is optional, drop it if it never showed up
				remainingHeaders = remove(remainingHeaders, "NODATA_VALUE")

				if len(remainingHeaders) > 0 {
					return nil, fmt.Errorf("grid is missing mandatory headers: %s", strings.Join(remainingHeaders, ", "))
				}

				stillIsHeader = false
				data = make([][]float64, grid.Nrows)
			}

			if rowIndex >= grid.Nrows {
				break
			}

			row, err := parseDataLine(fields, grid.Ncols)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowIndex, err)
			}
			data[rowIndex] = row
			rowIndex++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if stillIsHeader {
		return nil, fmt.Errorf("grid contains no data rows")
	}
	if rowIndex < grid.Nrows {
		return nil, fmt.Errorf("grid has %d data rows, header declares %d", rowIndex, grid.Nrows)
	}

	if centerOrigin {
		grid.Xllcorner -= grid.CellSize / 2
		grid.Yllcorner -= grid.CellSize / 2
	}

	grid.Data = data
	return grid, nil
}

func parseHeaderLine(fields []string, grid *Grid) error {
	if len(fields) != 2 {
		return fmt.Errorf("header line must have exactly two fields")
	}

	switch strings.ToUpper(fields[0]) {
	case "NCOLS":
		i, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		grid.Ncols = uint(i)
	case "NROWS":
		i, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		grid.Nrows = uint(i)
	case "XLLCENTER", "XLLCORNER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		grid.Xllcorner = f
	case "YLLCENTER", "YLLCORNER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		grid.Yllcorner = f
	case "CELLSIZE":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		if f <= 0.0 {
			return fmt.Errorf("CELLSIZE must be greater than 0")
		}
		grid.CellSize = f
	case "NODATA_VALUE":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		grid.NoDataValue = f
	default:
		return fmt.Errorf("unknown header keyword: %s", fields[0])
	}

	return nil
}

func parseDataLine(fields []string, cols uint) ([]float64, error) {
	if uint(len(fields)) < cols {
		return nil, fmt.Errorf("data row has %d values, expected %d", len(fields), cols)
	}

	row := make([]float64, cols)
	for i := uint(0); i < cols; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		row[i] = f
	}

	return row, nil
}

// Read loads a grid from path. Files ending in .gz are decompressed
// transparently.
func Read(path string) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	grid, err := Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return grid, nil
}

// WriteTo writes the grid in Esri ASCII format.
func (g *Grid) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "NCOLS %d\n", g.Ncols)
	fmt.Fprintf(bw, "NROWS %d\n", g.Nrows)
	fmt.Fprintf(bw, "XLLCORNER %s\n", formatFloat(g.Xllcorner))
	fmt.Fprintf(bw, "YLLCORNER %s\n", formatFloat(g.Yllcorner))
	fmt.Fprintf(bw, "CELLSIZE %s\n", formatFloat(g.CellSize))
	fmt.Fprintf(bw, "NODATA_VALUE %s\n", formatFloat(g.NoDataValue))

	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatFloat(g.Data[r][c]))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes the grid to path, gzip-compressed when the path ends
// in .gz.
func (g *Grid) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = file
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(file)
		w = gz
	}

	if err := g.WriteTo(w); err != nil {
		file.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			file.Close()
			return err
		}
	}
	return file.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func contains(array []string, element string) bool {
	for _, cur := range array {
		if cur == element {
			return true
		}
	}
	return false
}

func remove(arr []string, element string) []string {
	var remaining []string
	for i := 0; i < len(arr); i++ {
		if element != arr[i] {
			remaining = append(remaining, arr[i])
		}
	}
	return remaining
}
