package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
)

// ExportFormat names a network export format.
type ExportFormat string

const (
	ExportFormatJSON    ExportFormat = "json"
	ExportFormatCSV     ExportFormat = "csv"
	ExportFormatGraphML ExportFormat = "graphml"
)

// Export is a rendered network ready to be sent to a client.
type Export struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// ExportNetwork renders a persisted network in the requested format.
func (s *Store) ExportNetwork(ctx context.Context, id string, format ExportFormat) (*Export, error) {
	network, err := s.GetNetwork(ctx, id)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatJSON:
		payload, err := json.MarshalIndent(network, "", "  ")
		if err != nil {
			return nil, apierr.StorageFailure("failed to render network as JSON", err)
		}
		return &Export{Payload: payload, Filename: id + ".json", ContentType: "application/json"}, nil
	case ExportFormatCSV:
		payload, err := renderCSV(network)
		if err != nil {
			return nil, apierr.StorageFailure("failed to render network as CSV", err)
		}
		return &Export{Payload: payload, Filename: id + ".csv", ContentType: "text/csv"}, nil
	case ExportFormatGraphML:
		return &Export{Payload: renderGraphML(network), Filename: id + ".graphml", ContentType: "application/xml"}, nil
	default:
		return nil, apierr.InvalidArgument("unsupported export format " + string(format))
	}
}

// renderCSV emits one row per node. Unknown year or rating renders as an
// empty field; genres are semicolon-joined.
func renderCSV(network *Network) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"ID", "Title", "Year", "Rating", "Genres", "Depth"}); err != nil {
		return nil, err
	}
	for _, node := range network.Nodes {
		year, rating := "", ""
		if node.Year != nil {
			year = strconv.Itoa(*node.Year)
		}
		if node.Rating != nil {
			rating = strconv.FormatFloat(*node.Rating, 'f', -1, 64)
		}
		row := []string{
			node.ID,
			node.Title,
			year,
			rating,
			strings.Join(node.Genres, ";"),
			strconv.Itoa(node.Depth),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderGraphML emits the network as GraphML: typed node attribute keys
// declared up front, undirected edges with synthetic ids e0, e1, ... in
// emission order.
func renderGraphML(network *Network) []byte {
	var b strings.Builder

	b.WriteString(xml.Header)
	b.WriteString(`<graphml xmlns="http://graphml.graphdrawing.org/xmlns">` + "\n")
	b.WriteString(`  <key id="d0" for="node" attr.name="title" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="d1" for="node" attr.name="year" attr.type="int"/>` + "\n")
	b.WriteString(`  <key id="d2" for="node" attr.name="rating" attr.type="double"/>` + "\n")
	b.WriteString(`  <key id="d3" for="node" attr.name="depth" attr.type="int"/>` + "\n")
	fmt.Fprintf(&b, "  <graph id=\"%s\" edgedefault=\"undirected\">\n", escapeXML(network.ID))

	for _, node := range network.Nodes {
		fmt.Fprintf(&b, "    <node id=\"%s\">\n", escapeXML(node.ID))
		fmt.Fprintf(&b, "      <data key=\"d0\">%s</data>\n", escapeXML(node.Title))
		if node.Year != nil {
			fmt.Fprintf(&b, "      <data key=\"d1\">%d</data>\n", *node.Year)
		}
		if node.Rating != nil {
			fmt.Fprintf(&b, "      <data key=\"d2\">%s</data>\n", strconv.FormatFloat(*node.Rating, 'f', -1, 64))
		}
		fmt.Fprintf(&b, "      <data key=\"d3\">%d</data>\n", node.Depth)
		b.WriteString("    </node>\n")
	}
	for i, link := range network.Links {
		fmt.Fprintf(&b, "    <edge id=\"e%d\" source=\"%s\" target=\"%s\"/>\n", i, escapeXML(link.Source), escapeXML(link.Target))
	}

	b.WriteString("  </graph>\n")
	b.WriteString("</graphml>\n")
	return []byte(b.String())
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
