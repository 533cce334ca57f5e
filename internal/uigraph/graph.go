package uigraph

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Graph is the forward edge-label map a single `graph expanded ... svg`
// render produces: Graph[parent][child] is the k-cell transition label
// graphviz drew on that edge.
type Graph map[int]map[int]string

type graphParseState int

const (
	gpBetweenThings graphParseState = iota
	gpAddingThing
	gpAddingNode
	gpAddingEdge
	gpAfterAdd
)

// graphBuilder replays the sequence of `<g><title>...</title><text>...
// </text></g>` groups Graphviz emits per node/edge, exactly mirroring
// dot's own `<title>N</title>` (node) and `<title>A&#45;&gt;B</title>`
// (edge, numbers separated by the entity-escaped "->" arrow; the source
// number ends at the first '&' and the target starts after the last ';')
// convention.
type graphBuilder struct {
	nodes  map[int]struct{}
	edges  Graph
	state  graphParseState
	first  int
	second int
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{nodes: map[int]struct{}{}, edges: Graph{}, state: gpBetweenThings}
}

func (b *graphBuilder) startElement() error {
	if b.state != gpBetweenThings {
		return fmt.Errorf("uigraph: startElement in state %d", b.state)
	}
	b.state = gpAddingThing
	return nil
}

func (b *graphBuilder) addTitle(title string) error {
	if b.state != gpAddingThing {
		return fmt.Errorf("uigraph: addTitle in state %d", b.state)
	}
	pos := strings.IndexByte(title, '&')
	if pos < 0 {
		id, err := strconv.Atoi(title)
		if err != nil {
			return fmt.Errorf("uigraph: node title %q is not an integer: %w", title, err)
		}
		b.state = gpAddingNode
		b.nodes[id] = struct{}{}
		return nil
	}

	first, err := strconv.Atoi(title[:pos])
	if err != nil {
		return fmt.Errorf("uigraph: edge title %q has non-integer source: %w", title, err)
	}
	semi := strings.LastIndexByte(title, ';')
	if semi <= 0 {
		return fmt.Errorf("uigraph: edge title %q missing ';' terminator", title)
	}
	second, err := strconv.Atoi(title[semi+1:])
	if err != nil {
		return fmt.Errorf("uigraph: edge title %q has non-integer target: %w", title, err)
	}
	if _, ok := b.nodes[first]; !ok {
		return fmt.Errorf("uigraph: edge title %q references unknown node %d", title, first)
	}
	if _, ok := b.nodes[second]; !ok {
		return fmt.Errorf("uigraph: edge title %q references unknown node %d", title, second)
	}
	b.state = gpAddingEdge
	b.first = first
	b.second = second
	return nil
}

func (b *graphBuilder) addText(text string) error {
	switch b.state {
	case gpAddingEdge:
		if b.edges[b.first] == nil {
			b.edges[b.first] = map[int]string{}
		}
		b.edges[b.first][b.second] = text
	case gpAddingNode:
	default:
		return fmt.Errorf("uigraph: addText in state %d", b.state)
	}
	b.state = gpAfterAdd
	return nil
}

func (b *graphBuilder) endElement() error {
	b.state = gpBetweenThings
	return nil
}

type svgParseState int

const (
	spStart svgParseState = iota
	spInGraph
	spInGraphG
	spInGraphGTitle
	spInGraphGText
)

// ParseSVGGraph walks the tag stream produced by ParseTags and rebuilds
// the Graphviz `<g>` groups into a Graph. Graphviz nests the whole
// drawing in an outer `<g id="graph0">`, then one `<g>` per node or
// edge, each carrying a `<title>` identifying it and a `<text>` holding
// the label kdebug wrote on it.
func ParseSVGGraph(tags []Tag) (Graph, error) {
	state := spStart
	b := newGraphBuilder()

	for _, tag := range tags {
		switch state {
		case spStart:
			if tag.Kind == TagOpen && tag.Name == "g" {
				state = spInGraph
			}
		case spInGraph:
			switch {
			case tag.Kind == TagOpen && tag.Name == "g":
				state = spInGraphG
				if err := b.startElement(); err != nil {
					return nil, err
				}
			case tag.Kind == TagClose && tag.Name == "g":
				state = spStart
			}
		case spInGraphG:
			switch {
			case tag.Kind == TagOpen && tag.Name == "title":
				state = spInGraphGTitle
			case tag.Kind == TagOpen && tag.Name == "text":
				state = spInGraphGText
			case tag.Kind == TagClose && tag.Name == "g":
				if err := b.endElement(); err != nil {
					return nil, err
				}
				state = spInGraph
			}
		case spInGraphGTitle:
			switch {
			case tag.Kind == TagText:
				if err := b.addTitle(tag.Text); err != nil {
					return nil, err
				}
			case tag.Kind == TagClose && tag.Name == "title":
				state = spInGraphG
			}
		case spInGraphGText:
			switch {
			case tag.Kind == TagText:
				if err := b.addText(tag.Text); err != nil {
					return nil, err
				}
			case tag.Kind == TagClose && tag.Name == "text":
				state = spInGraphG
			}
		}
	}
	return b.edges, nil
}

// ParseGraphSVG tokenizes the text of an SVG document and extracts its
// edge-label graph in one call.
func ParseGraphSVG(content string) (Graph, error) {
	tags, err := ParseTags(content)
	if err != nil {
		return nil, err
	}
	return ParseSVGGraph(tags)
}

// ChangeListener is notified after UIGraph's graph is replaced.
type ChangeListener interface{ OnChange() }

// ChangeListenerFunc adapts a plain function to ChangeListener.
type ChangeListenerFunc func()

func (f ChangeListenerFunc) OnChange() { f() }

// UIGraph holds the most recently rendered proof graph and the reverse
// (incoming-edge) index derived from it, for O(1) "what step produced
// this node" lookups from the UI.
type UIGraph struct {
	mu        sync.Mutex
	graph     Graph
	incoming  map[int]string
	listeners []ChangeListener
}

// New returns an empty UIGraph.
func New() *UIGraph {
	g := &UIGraph{graph: Graph{}}
	g.computeIncomingEdges()
	return g
}

// AddChangeListener registers l to run after every SetGraph call.
func (g *UIGraph) AddChangeListener(l ChangeListener) {
	g.mu.Lock()
	g.listeners = append(g.listeners, l)
	g.mu.Unlock()
}

// SetGraph replaces the current graph wholesale - the engine always
// re-renders the whole expanded tree, never a single edge, so there is
// no incremental update to apply.
func (g *UIGraph) SetGraph(graph Graph) {
	g.mu.Lock()
	g.graph = graph
	g.computeIncomingEdges()
	listeners := append([]ChangeListener(nil), g.listeners...)
	g.mu.Unlock()

	for _, l := range listeners {
		l.OnChange()
	}
}

// Graph returns the current forward edge map.
func (g *UIGraph) Graph() Graph {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.graph
}

// IncomingEdge returns the label on the edge leading into nodeID, if
// any node in the current graph has nodeID as a child.
func (g *UIGraph) IncomingEdge(nodeID int) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	label, ok := g.incoming[nodeID]
	return label, ok
}

func (g *UIGraph) computeIncomingEdges() {
	g.incoming = map[int]string{}
	for _, children := range g.graph {
		for child, label := range children {
			g.incoming[child] = label
		}
	}
}
