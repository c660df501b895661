package dimension

import "fmt"

// Dimension identifies one of the four bipolar personality axes.
type Dimension string

const (
	EI Dimension = "E_I"
	SN Dimension = "S_N"
	TF Dimension = "T_F"
	JP Dimension = "J_P"
)

// All returns the dimensions in type-code order.
func All() []Dimension {
	return []Dimension{EI, SN, TF, JP}
}

// Pole is one end of a dimension.
type Pole struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Info holds display metadata for a dimension. Agreement with a
// non-reverse-coded question moves the score toward Right.
type Info struct {
	Name  string
	Left  Pole
	Right Pole
}

var infos = map[Dimension]Info{
	EI: {
		Name:  "Extraversion-Introversion",
		Left:  Pole{Code: "I", Label: "Introversion"},
		Right: Pole{Code: "E", Label: "Extraversion"},
	},
	SN: {
		Name:  "Sensing-Intuition",
		Left:  Pole{Code: "S", Label: "Sensing"},
		Right: Pole{Code: "N", Label: "Intuition"},
	},
	TF: {
		Name:  "Thinking-Feeling",
		Left:  Pole{Code: "F", Label: "Feeling"},
		Right: Pole{Code: "T", Label: "Thinking"},
	},
	JP: {
		Name:  "Judging-Perceiving",
		Left:  Pole{Code: "P", Label: "Perceiving"},
		Right: Pole{Code: "J", Label: "Judging"},
	},
}

// Valid reports whether d is one of the four known dimensions.
func (d Dimension) Valid() bool {
	_, ok := infos[d]
	return ok
}

// Info returns the metadata for d. Unknown dimensions yield a zero Info.
func (d Dimension) Info() Info {
	return infos[d]
}

// Name returns the display name, or d itself when unknown.
func (d Dimension) Name() string {
	if info, ok := infos[d]; ok {
		return info.Name
	}
	return string(d)
}

// Left returns the pole a score of 0 points to.
func (d Dimension) Left() Pole { return infos[d].Left }

// Right returns the pole agreement moves toward.
func (d Dimension) Right() Pole { return infos[d].Right }

// Opposite returns the code on the other side of d from code. Any code
// that is not the right-side code (including "X") maps to the right side.
func (d Dimension) Opposite(code string) string {
	info := infos[d]
	if code == info.Right.Code {
		return info.Left.Code
	}
	return info.Right.Code
}

// Parse converts a string such as "E_I" to a Dimension.
func Parse(s string) (Dimension, error) {
	d := Dimension(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown dimension %q", s)
	}
	return d, nil
}

// Index returns the position of d in All(), or -1.
func Index(d Dimension) int {
	for i, x := range All() {
		if x == d {
			return i
		}
	}
	return -1
}

// ForCode returns the dimension a single type letter belongs to.
func ForCode(code string) (Dimension, bool) {
	for _, d := range All() {
		info := infos[d]
		if info.Left.Code == code || info.Right.Code == code {
			return d, true
		}
	}
	return "", false
}
