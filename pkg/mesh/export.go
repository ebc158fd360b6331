package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/deadsy/sdfx/render"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// WriteOBJ writes the mesh as Wavefront OBJ: positions, texture
// coordinates, and one quad face per polygon. Attributes are not written.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(v.X), ftoa(v.Y), ftoa(v.Z))
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(bw, "vt %s %s\n", ftoa(uv.X), ftoa(uv.Y))
	}
	for _, n := range m.Normals() {
		fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n.X), ftoa(n.Y), ftoa(n.Z))
	}
	for i, p := range m.Polygons {
		uv := m.UVLoops[i]
		// OBJ indices are 1-based; normals share the vertex index
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d %d/%d/%d\n",
			p[0]+1, uv[0]+1, p[0]+1, p[1]+1, uv[1]+1, p[1]+1,
			p[2]+1, uv[2]+1, p[2]+1, p[3]+1, uv[3]+1, p[3]+1)
	}
	return bw.Flush()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// SaveOBJ writes the mesh to an OBJ file at path.
func (m *Mesh) SaveOBJ(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mesh: create %s: %w", path, err)
	}
	if err := m.WriteOBJ(f); err != nil {
		f.Close()
		return fmt.Errorf("mesh: write %s: %w", path, err)
	}
	return f.Close()
}

// SaveSTL triangulates the mesh and writes it as binary STL.
func (m *Mesh) SaveSTL(path string) error {
	if err := render.SaveSTL(path, m.Triangles()); err != nil {
		return fmt.Errorf("mesh: save stl %s: %w", path, err)
	}
	return nil
}

// ReadOBJ parses the subset of OBJ written by WriteOBJ: v and vt records
// and quad faces. Normals are recomputed from the faces, so vn records and
// other records are ignored.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	m := New()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("mesh: obj line %d: %w", line, err)
			}
			m.AddVertex(v3.Vec{X: f[0], Y: f[1], Z: f[2]})
		case "vt":
			f, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("mesh: obj line %d: %w", line, err)
			}
			m.AddUV(v2.Vec{X: f[0], Y: f[1]})
		case "f":
			if len(fields) != 5 {
				return nil, fmt.Errorf("mesh: obj line %d: face has %d corners, want 4", line, len(fields)-1)
			}
			var verts, uvs [4]int
			for j, corner := range fields[1:] {
				v, uv, err := parseCorner(corner)
				if err != nil {
					return nil, fmt.Errorf("mesh: obj line %d: %w", line, err)
				}
				verts[j], uvs[j] = v, uv
			}
			m.AddPolygon(verts, uvs)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mesh: read obj: %w", err)
	}
	if err := m.CheckParity(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// parseCorner parses "v/vt" (or "v", "v/vt/vn") into 0-based indices. A
// missing texture index maps to uv 0.
func parseCorner(s string) (v, uv int, err error) {
	parts := strings.Split(s, "/")
	v, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	if len(parts) > 1 && parts[1] != "" {
		uv, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, err
		}
		return v - 1, uv - 1, nil
	}
	return v - 1, 0, nil
}
