package window

import (
	"errors"
	"strings"
	"testing"

	"github.com/winnowhq/winnow/internal/document"
)

// Helper to create a test document
func createTestDocument(id, text string) document.Document {
	return document.Document{
		ID:     id,
		Source: "test://" + id,
		Text:   text,
	}
}

func newTestParser(t *testing.T, windowSize int) *NodeParser {
	t.Helper()
	config := DefaultParserConfig()
	config.WindowSize = windowSize
	parser, err := NewNodeParser(config, nil)
	if err != nil {
		t.Fatalf("Expected parser construction to succeed, got %v", err)
	}
	return parser
}

func TestNewNodeParser_RejectsNegativeWindowSize(t *testing.T) {
	config := DefaultParserConfig()
	config.WindowSize = -1

	_, err := NewNodeParser(config, nil)

	if !errors.Is(err, ErrInvalidWindowSize) {
		t.Errorf("Expected ErrInvalidWindowSize, got %v", err)
	}
}

func TestNewNodeParser_RejectsIdenticalKeys(t *testing.T) {
	config := ParserConfig{WindowSize: 2, WindowKey: "ctx", OriginalTextKey: "ctx"}

	_, err := NewNodeParser(config, nil)

	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestNewNodeParser_DefaultsEmptyKeys(t *testing.T) {
	parser, err := NewNodeParser(ParserConfig{WindowSize: 1}, nil)
	if err != nil {
		t.Fatalf("Expected construction to succeed, got %v", err)
	}

	if parser.Config().WindowKey != DefaultWindowKey {
		t.Errorf("Expected window key %q, got %q", DefaultWindowKey, parser.Config().WindowKey)
	}
	if parser.Config().OriginalTextKey != DefaultOriginalTextKey {
		t.Errorf("Expected original text key %q, got %q", DefaultOriginalTextKey, parser.Config().OriginalTextKey)
	}
}

func TestParse_WindowScenario(t *testing.T) {
	parser := newTestParser(t, 1)

	nodes := parser.Parse(createTestDocument("doc1", "A. B. C. D. E."))

	if len(nodes) != 5 {
		t.Fatalf("Expected 5 nodes, got %d", len(nodes))
	}

	// Middle node gets one sentence on each side
	if got := nodes[2].Metadata[DefaultWindowKey]; got != "B. C. D." {
		t.Errorf("Expected window %q for node C, got %q", "B. C. D.", got)
	}

	// First node's window is clipped at the start and has no back link
	if got := nodes[0].Metadata[DefaultWindowKey]; got != "A. B." {
		t.Errorf("Expected window %q for node A, got %q", "A. B.", got)
	}
	if nodes[0].PrevID != "" {
		t.Errorf("Expected no prev link on first node, got %q", nodes[0].PrevID)
	}
	if nodes[4].NextID != "" {
		t.Errorf("Expected no next link on last node, got %q", nodes[4].NextID)
	}
}

func TestParse_WindowContainment(t *testing.T) {
	parser := newTestParser(t, 2)
	doc := createTestDocument("doc1",
		"The quick brown fox jumps. It lands on the grass. A dog watches nearby. "+
			"The fox runs away! Was the dog too slow? Probably.")

	nodes := parser.Parse(doc)

	for _, node := range nodes {
		windowText := node.Metadata[DefaultWindowKey]
		if !strings.Contains(windowText, node.Text) {
			t.Errorf("Expected window %q to contain node text %q", windowText, node.Text)
		}
	}
}

func TestParse_WindowBoundedness(t *testing.T) {
	windowSize := 2
	parser := newTestParser(t, windowSize)
	doc := createTestDocument("doc1", "A. B. C. D. E. F. G.")

	nodes := parser.Parse(doc)
	n := len(nodes)

	for _, node := range nodes {
		i := node.SequenceIndex
		expected := min(windowSize, i) + min(windowSize, n-1-i) + 1
		got := len(strings.Fields(node.Metadata[DefaultWindowKey]))
		if got != expected {
			t.Errorf("Expected %d sentences in window at index %d, got %d", expected, i, got)
		}
	}
}

func TestParse_ZeroWindowSize(t *testing.T) {
	parser := newTestParser(t, 0)

	nodes := parser.Parse(createTestDocument("doc1", "A. B. C."))

	for _, node := range nodes {
		if node.Metadata[DefaultWindowKey] != node.Text {
			t.Errorf("Expected window to equal text for zero window size, got %q vs %q",
				node.Metadata[DefaultWindowKey], node.Text)
		}
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	parser := newTestParser(t, 3)

	if nodes := parser.Parse(createTestDocument("doc1", "")); nodes != nil {
		t.Errorf("Expected no nodes for empty document, got %d", len(nodes))
	}
	if nodes := parser.Parse(createTestDocument("doc1", "  \n ")); nodes != nil {
		t.Errorf("Expected no nodes for whitespace document, got %d", len(nodes))
	}
}

func TestParse_SingleSentence(t *testing.T) {
	parser := newTestParser(t, 3)

	nodes := parser.Parse(createTestDocument("doc1", "Only one sentence here."))

	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(nodes))
	}
	node := nodes[0]
	if node.Metadata[DefaultWindowKey] != node.Text {
		t.Errorf("Expected single-sentence window to equal the sentence, got %q", node.Metadata[DefaultWindowKey])
	}
	if node.PrevID != "" || node.NextID != "" {
		t.Errorf("Expected no links on a lone node, got prev=%q next=%q", node.PrevID, node.NextID)
	}
}

func TestParse_Coverage(t *testing.T) {
	parser := newTestParser(t, 2)
	text := "First sentence. Second sentence. Third sentence. Fourth sentence."
	doc := createTestDocument("doc1", text)

	nodes := parser.Parse(doc)

	segmenter := NewPunctSegmenter()
	sentences := segmenter.Segment(text)
	if len(nodes) != len(sentences) {
		t.Fatalf("Expected %d nodes, got %d", len(sentences), len(nodes))
	}
	for i, node := range nodes {
		if node.SequenceIndex != i {
			t.Errorf("Expected sequence index %d, got %d", i, node.SequenceIndex)
		}
		if node.Text != sentences[i].Text {
			t.Errorf("Expected node %d text %q, got %q", i, sentences[i].Text, node.Text)
		}
		if node.Metadata[DefaultOriginalTextKey] != node.Text {
			t.Errorf("Expected original text metadata to equal node text at %d", i)
		}
	}
}

func TestParse_LinkConsistency(t *testing.T) {
	parser := newTestParser(t, 1)

	nodes := parser.Parse(createTestDocument("doc1", "A. B. C. D."))

	byID := make(map[string]Node, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	for _, node := range nodes {
		if node.PrevID != "" {
			prev, ok := byID[node.PrevID]
			if !ok {
				t.Fatalf("Expected prev ID %q to resolve", node.PrevID)
			}
			if prev.SequenceIndex != node.SequenceIndex-1 {
				t.Errorf("Expected prev sequence %d, got %d", node.SequenceIndex-1, prev.SequenceIndex)
			}
		}
		if node.NextID != "" {
			next, ok := byID[node.NextID]
			if !ok {
				t.Fatalf("Expected next ID %q to resolve", node.NextID)
			}
			if next.SequenceIndex != node.SequenceIndex+1 {
				t.Errorf("Expected next sequence %d, got %d", node.SequenceIndex+1, next.SequenceIndex)
			}
		}
	}
}

func TestParse_InheritsDocumentMetadata(t *testing.T) {
	parser := newTestParser(t, 1)
	doc := createTestDocument("doc1", "A. B.")
	doc.Metadata = map[string]string{"author": "alice", "window": "should not clobber"}

	nodes := parser.Parse(doc)

	if nodes[0].Metadata["author"] != "alice" {
		t.Errorf("Expected document metadata to be inherited, got %q", nodes[0].Metadata["author"])
	}
	// The window attribute always wins over colliding document metadata
	if nodes[0].Metadata[DefaultWindowKey] == "should not clobber" {
		t.Error("Expected window metadata not to be overwritten by document metadata")
	}
}

func TestParseAll_PreservesDocumentOrderAndBoundaries(t *testing.T) {
	parser := newTestParser(t, 2)
	docs := []document.Document{
		createTestDocument("doc1", "A. B. C."),
		createTestDocument("doc2", "X. Y. Z."),
		createTestDocument("doc3", ""),
	}

	nodes := parser.ParseAll(docs)

	if len(nodes) != 6 {
		t.Fatalf("Expected 6 nodes, got %d", len(nodes))
	}
	for i, node := range nodes[:3] {
		if node.DocumentID != "doc1" {
			t.Errorf("Expected node %d from doc1, got %q", i, node.DocumentID)
		}
	}
	for i, node := range nodes[3:] {
		if node.DocumentID != "doc2" {
			t.Errorf("Expected node %d from doc2, got %q", i+3, node.DocumentID)
		}
	}

	// Windows never cross document boundaries
	for _, node := range nodes[:3] {
		window := node.Metadata[DefaultWindowKey]
		for _, foreign := range []string{"X.", "Y.", "Z."} {
			if strings.Contains(window, foreign) {
				t.Errorf("Expected doc1 window %q not to contain %q from doc2", window, foreign)
			}
		}
	}
}

func TestParse_CustomKeys(t *testing.T) {
	config := ParserConfig{WindowSize: 1, WindowKey: "context", OriginalTextKey: "sentence"}
	parser, err := NewNodeParser(config, nil)
	if err != nil {
		t.Fatalf("Expected construction to succeed, got %v", err)
	}

	nodes := parser.Parse(createTestDocument("doc1", "A. B. C."))

	if nodes[1].Metadata["context"] != "A. B. C." {
		t.Errorf("Expected custom window key, got metadata %v", nodes[1].Metadata)
	}
	if nodes[1].Metadata["sentence"] != "B." {
		t.Errorf("Expected custom original text key, got metadata %v", nodes[1].Metadata)
	}
}
