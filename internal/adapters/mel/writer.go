// Package mel renders shading network operations as a MEL script that can be
// sourced in Maya.
package mel

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// Writer is a ShadingGraph that writes MEL commands to w
type Writer struct {
	w     io.Writer
	err   error
	lines int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Lines reports how many commands were written
func (m *Writer) Lines() int { return m.lines }

func (m *Writer) printf(format string, args ...any) error {
	if m.err != nil {
		return m.err
	}
	if _, err := fmt.Fprintf(m.w, format+"\n", args...); err != nil {
		m.err = err
		return err
	}
	m.lines++
	return nil
}

// Header writes a comment naming the material being built
func (m *Writer) Header(material string, renderer domain.Renderer) error {
	return m.printf("// px material: %s (%s)", material, renderer)
}

// CreateNode emits a shadingNode command. The script cannot learn the final
// name Maya assigns, so the requested name is returned.
func (m *Writer) CreateNode(ctx context.Context, node domain.ShadingNode) (string, error) {
	flag := "-" + kindFlag(node.Kind)
	var cm string
	if node.ColorManaged {
		cm = " -isColorManaged"
	}
	err := m.printf("shadingNode %s%s -n %s %s;", flag, cm, quote(node.Name), node.Type)
	return node.Name, err
}

func (m *Writer) Connect(ctx context.Context, src, dst string, force bool) error {
	f := ""
	if force {
		f = " -f"
	}
	return m.printf("connectAttr%s %s %s;", f, src, dst)
}

func (m *Writer) SetAttr(ctx context.Context, plug string, value any) error {
	switch v := value.(type) {
	case string:
		return m.printf("setAttr -type \"string\" %s %s;", plug, quote(v))
	case bool:
		b := 0
		if v {
			b = 1
		}
		return m.printf("setAttr %s %d;", plug, b)
	case int:
		return m.printf("setAttr %s %d;", plug, v)
	case float64:
		return m.printf("setAttr %s %s;", plug, strconv.FormatFloat(v, 'g', -1, 64))
	default:
		return domain.NewValidationError("attribute value", fmt.Sprintf("unsupported type %T for %s", value, plug))
	}
}

func kindFlag(k domain.NodeKind) string {
	switch k {
	case domain.KindShader:
		return "asShader"
	case domain.KindTexture:
		return "asTexture"
	default:
		return "asUtility"
	}
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
