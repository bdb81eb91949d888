package section

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_graph.yaml
var defaultGraphYAML []byte

type sectionSpec struct {
	Name    string `yaml:"name"`
	Looping bool   `yaml:"looping"`
	Wheel   bool   `yaml:"wheel"`
	UI      bool   `yaml:"ui"`
}

type edgeSpec struct {
	From     string `yaml:"from"`
	Intent   string `yaml:"intent"`
	To       string `yaml:"to"`
	Clip     string `yaml:"clip"`
	LoopWait bool   `yaml:"loop_wait"`
}

type graphSpec struct {
	Sections []sectionSpec `yaml:"sections"`
	Edges    []edgeSpec    `yaml:"edges"`
}

// ParseGraph builds a Graph from YAML and validates it.
func ParseGraph(data []byte) (*Graph, error) {
	var spec graphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}

	graph := &Graph{
		infos:   make(map[Section]Info, len(spec.Sections)),
		forward: make(map[Section]Edge),
		back:    make(map[Section]Edge),
		direct:  make(map[Section]map[Section]Edge),
	}

	for _, s := range spec.Sections {
		name, ok := Parse(s.Name)
		if !ok {
			return nil, fmt.Errorf("unknown section %q", s.Name)
		}
		if _, dup := graph.infos[name]; dup {
			return nil, fmt.Errorf("section %s declared twice", name)
		}
		graph.order = append(graph.order, name)
		graph.infos[name] = Info{Looping: s.Looping, Wheel: s.Wheel, UI: s.UI}
	}

	for _, e := range spec.Edges {
		from, ok := Parse(e.From)
		if !ok {
			return nil, fmt.Errorf("edge has unknown source %q", e.From)
		}
		to, ok := Parse(e.To)
		if !ok {
			return nil, fmt.Errorf("edge has unknown target %q", e.To)
		}
		edge := Edge{From: from, To: to, Clip: Clip(e.Clip), RequiresLoopWait: e.LoopWait}
		switch e.Intent {
		case "forward":
			edge.Kind = IntentForward
			if _, dup := graph.forward[from]; dup {
				return nil, fmt.Errorf("section %s has two forward edges", from)
			}
			graph.forward[from] = edge
		case "back":
			edge.Kind = IntentBack
			if _, dup := graph.back[from]; dup {
				return nil, fmt.Errorf("section %s has two back edges", from)
			}
			graph.back[from] = edge
		case "direct":
			edge.Kind = IntentDirect
			if graph.direct[from] == nil {
				graph.direct[from] = make(map[Section]Edge)
			}
			if _, dup := graph.direct[from][to]; dup {
				return nil, fmt.Errorf("section %s has two direct edges to %s", from, to)
			}
			graph.direct[from][to] = edge
		default:
			return nil, fmt.Errorf("edge %s -> %s has unknown intent %q", from, to, e.Intent)
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("graph invalid: %w", err)
	}
	return graph, nil
}

// LoadFile parses a graph from a YAML file on disk.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	return ParseGraph(data)
}

// Embedded returns the graph shipped with the binary. It panics on parse
// failure because the embedded asset is covered by tests; a broken build
// should not start.
func Embedded() *Graph {
	graph, err := ParseGraph(defaultGraphYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded graph invalid: %v", err))
	}
	return graph
}

// Load returns the graph at path, or the embedded graph when path is empty.
func Load(path string) (*Graph, error) {
	if path == "" {
		return Embedded(), nil
	}
	return LoadFile(path)
}
