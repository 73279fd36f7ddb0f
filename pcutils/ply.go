package pcutils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const plyHeader = `ply
format ascii 1.0
element vertex %d
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
property uchar alpha
end_header
`

// FormatPoint renders one vertex line. Alpha is always written as 0.
func FormatPoint(p Point) string {
	return fmt.Sprintf("%f %f %f %d %d %d 0\n", p.X, p.Y, p.Z, p.Color.R, p.Color.G, p.Color.B)
}

func WritePLY(out io.Writer, c Cloud) error {
	w := bufio.NewWriter(out)
	if _, err := fmt.Fprintf(w, plyHeader, len(c)); err != nil {
		return err
	}
	for _, p := range c {
		if _, err := w.WriteString(FormatPoint(p)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func WritePLYFile(fn string, c Cloud) (err error) {
	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return WritePLY(f, c)
}

// ReadPLY reads the ascii layout written by WritePLY. Only x y z red green blue are
// required per vertex, anything after is ignored.
func ReadPLY(in io.Reader) (Cloud, error) {
	scanner := bufio.NewScanner(in)

	lineNum := 0
	next := func() (string, bool) {
		for scanner.Scan() {
			lineNum++
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				return line, true
			}
		}
		return "", false
	}

	first, ok := next()
	if !ok || first != "ply" {
		return nil, errors.New("not a ply file")
	}

	count := -1
	for {
		line, ok := next()
		if !ok {
			return nil, errors.New("ply header has no end_header")
		}
		if line == "end_header" {
			break
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, errors.Errorf("unsupported ply format %q", line)
			}
		case "element":
			if len(fields) == 3 && fields[1] == "vertex" {
				n, err := strconv.Atoi(fields[2])
				if err != nil {
					return nil, errors.Wrapf(err, "bad vertex count on line %d", lineNum)
				}
				count = n
			}
		}
	}
	if count < 0 {
		return nil, errors.New("ply header has no vertex element")
	}

	// the header count is only trusted once the vertices are actually there
	c := make(Cloud, 0, min(count, 1<<16))
	for len(c) < count {
		line, ok := next()
		if !ok {
			return nil, errors.Errorf("ply has %d vertices, header says %d", len(c), count)
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, errors.Errorf("line %d: need at least 6 fields, got %d", lineNum, len(fields))
		}
		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			xyz[i] = v
		}
		var rgb [3]uint8
		for i := range rgb {
			v, err := strconv.ParseUint(fields[3+i], 10, 8)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			rgb[i] = uint8(v)
		}
		c = append(c, NewPoint(xyz[0], xyz[1], xyz[2], rgb[0], rgb[1], rgb[2]))
	}

	return c, scanner.Err()
}

func ReadPLYFile(fn string) (Cloud, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadPLY(f)
}
