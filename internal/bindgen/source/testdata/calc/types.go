package calc

import (
	"encoding/json"
	"time"
)

type Point struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Label   string  `json:"label,omitempty"`
	Ignored string  `json:"-"`
	secret  int
}

type Node struct {
	Value    string `json:"value"`
	Next     *Node  `json:"next"`
	Children []Node `json:"children"`
}

type Audit struct {
	By string `json:"by"`
}

type Stamp struct {
	Audit
	At    time.Time         `json:"at"`
	Tags  map[string]string `json:"tags"`
	Raw   json.RawMessage   `json:"raw"`
	Bytes []byte            `json:"bytes"`
}
