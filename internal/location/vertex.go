package location

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// vertexNames are the domain IDs of a location's four corners in draw order.
var vertexNames = [4]string{"V01", "V02", "V03", "V04"}

// Vertex is one corner of a location's footprint, relative to its anchor.
type Vertex struct {
	ID        string `json:"id"`
	DomainID  string `json:"domain_id"`
	DrawOrder int    `json:"draw_order"`
	Point     Point  `json:"point"`
}

// SetVertices replaces the corner positions. Existing vertices keep their IDs
// so repeated imports do not churn persisted rows.
func (l *Location) SetVertices(corners [4]Point) {
	if len(l.Vertices) != len(corners) {
		l.Vertices = make([]*Vertex, len(corners))
		for i := range corners {
			l.Vertices[i] = &Vertex{ID: uuid.NewString(), DomainID: vertexNames[i], DrawOrder: i}
		}
	}
	for i, p := range corners {
		l.Vertices[i].Point = p
	}
}

// VerticesUI renders the corners as "(x, y) " pairs in draw order.
func (l *Location) VerticesUI() string {
	var b strings.Builder
	for _, v := range l.Vertices {
		fmt.Fprintf(&b, "(%.2f, %.2f) ", v.Point.X, v.Point.Y)
	}
	return b.String()
}
