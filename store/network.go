package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"

	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
)

// NetworkNode is a movie placed in a network graph. Depth is the BFS distance
// from the seed, assigned at first discovery and never lowered.
type NetworkNode struct {
	Movie
	Depth        int   `json:"depth"`
	DiscoveredTs int64 `json:"discoveredTs"`
}

// NetworkLink is an unordered pair of node ids. No self-loops, no duplicates.
type NetworkLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// nodeRef decodes a link endpoint that may arrive either as a bare id string
// or as an embedded node object carrying an id.
type nodeRef string

func (r *nodeRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = nodeRef(id)
		return nil
	}
	var embedded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &embedded); err != nil {
		return errors.Wrap(err, "link endpoint must be an id or a node object")
	}
	*r = nodeRef(embedded.ID)
	return nil
}

// UnmarshalJSON normalizes link endpoints to bare ids.
func (l *NetworkLink) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source nodeRef `json:"source"`
		Target nodeRef `json:"target"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Source = string(raw.Source)
	l.Target = string(raw.Target)
	return nil
}

// NetworkMetadata is derived from nodes and links at save time, never trusted
// from caller input.
type NetworkMetadata struct {
	NodeCount int      `json:"nodeCount"`
	LinkCount int      `json:"linkCount"`
	MaxDepth  int      `json:"maxDepth"`
	Genres    []string `json:"genres,omitempty"`
	// AverageRating is computed over nodes with a known rating only; nil when
	// no node carries one.
	AverageRating *float64 `json:"averageRating,omitempty"`
}

// Network is a crawled movie relationship graph.
type Network struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	SeedID      string            `json:"seedId"`
	Nodes       []*NetworkNode    `json:"nodes"`
	Links       []*NetworkLink    `json:"links"`
	Settings    map[string]string `json:"settings,omitempty"`
	CreatedTs   int64             `json:"createdTs"`
	UpdatedTs   int64             `json:"updatedTs"`
	Metadata    NetworkMetadata   `json:"metadata"`
}

// NetworkSummary is a listing entry for a persisted network.
type NetworkSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	SeedID      string          `json:"seedId"`
	CreatedTs   int64           `json:"createdTs"`
	UpdatedTs   int64           `json:"updatedTs"`
	Metadata    NetworkMetadata `json:"metadata"`
}

// UpdateNetwork carries a partial update; nil fields are left unchanged.
type UpdateNetwork struct {
	Name        *string
	Description *string
	Nodes       []*NetworkNode
	Links       []*NetworkLink
	Settings    map[string]string
}

// NetworkStats aggregates over all persisted networks.
type NetworkStats struct {
	TotalGraphs       int     `json:"totalGraphs"`
	TotalNodes        int     `json:"totalNodes"`
	TotalLinks        int     `json:"totalLinks"`
	TotalStorageBytes int64   `json:"totalStorageBytes"`
	AverageGraphSize  float64 `json:"averageGraphSize"`
}

// networkPayload is the structured-text body of a persisted network record.
type networkPayload struct {
	Nodes    []*NetworkNode    `json:"nodes"`
	Links    []*NetworkLink    `json:"links"`
	Settings map[string]string `json:"settings,omitempty"`
	Metadata NetworkMetadata   `json:"metadata"`
}

// NetworkRecord is the driver-level representation of a network.
type NetworkRecord struct {
	ID          string
	Name        string
	Description string
	SeedID      string
	CreatedTs   int64
	UpdatedTs   int64
	Payload     string
}

// SaveNetwork persists a network. A missing id is generated; CreatedTs is
// stamped on first save and immutable afterwards. Metadata is recomputed from
// nodes and links.
func (s *Store) SaveNetwork(ctx context.Context, network *Network) (*Network, error) {
	if network == nil || len(network.Nodes) == 0 {
		return nil, apierr.InvalidArgument("network must contain at least one node")
	}
	if err := validateNodes(network.Nodes); err != nil {
		return nil, err
	}

	links, err := NormalizeLinks(network.Nodes, network.Links)
	if err != nil {
		return nil, err
	}
	network.Links = links

	if network.ID == "" {
		network.ID = s.idGenerator.NetworkID(network.Name)
	}
	if network.Name == "" {
		network.Name = network.ID
	}
	if network.SeedID == "" {
		network.SeedID = network.Nodes[0].ID
	}

	unlock := s.networkLocks.Lock(network.ID)
	defer unlock()

	now := time.Now().Unix()
	if existing, err := s.driver.GetNetworkRecord(ctx, network.ID); err != nil {
		return nil, apierr.StorageFailure("failed to read network record", err)
	} else if existing != nil {
		network.CreatedTs = existing.CreatedTs
	} else {
		network.CreatedTs = now
	}
	network.UpdatedTs = now
	network.Metadata = ComputeMetadata(network.Nodes, network.Links)

	record, err := encodeNetwork(network)
	if err != nil {
		return nil, apierr.StorageFailure("failed to encode network", err)
	}
	if err := s.driver.UpsertNetworkRecord(ctx, record); err != nil {
		return nil, apierr.StorageFailure("failed to persist network", err)
	}
	return network, nil
}

// GetNetwork loads a network by id.
func (s *Store) GetNetwork(ctx context.Context, id string) (*Network, error) {
	record, err := s.driver.GetNetworkRecord(ctx, id)
	if err != nil {
		return nil, apierr.StorageFailure("failed to read network record", err)
	}
	if record == nil {
		return nil, apierr.NotFoundf("network %s not found", id)
	}
	return decodeNetwork(record)
}

// ListNetworks returns summaries of all networks, newest created first.
func (s *Store) ListNetworks(ctx context.Context) ([]*NetworkSummary, error) {
	records, err := s.driver.ListNetworkRecords(ctx)
	if err != nil {
		return nil, apierr.StorageFailure("failed to list network records", err)
	}

	summaries := make([]*NetworkSummary, 0, len(records))
	for _, record := range records {
		network, err := decodeNetwork(record)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &NetworkSummary{
			ID:          network.ID,
			Name:        network.Name,
			Description: network.Description,
			SeedID:      network.SeedID,
			CreatedTs:   network.CreatedTs,
			UpdatedTs:   network.UpdatedTs,
			Metadata:    network.Metadata,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedTs > summaries[j].CreatedTs
	})
	return summaries, nil
}

// UpdateNetwork applies a partial update, preserving id and CreatedTs and
// recomputing UpdatedTs and metadata.
func (s *Store) UpdateNetwork(ctx context.Context, id string, update *UpdateNetwork) (*Network, error) {
	unlock := s.networkLocks.Lock(id)
	defer unlock()

	network, err := s.GetNetwork(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		network.Name = *update.Name
	}
	if update.Description != nil {
		network.Description = *update.Description
	}
	if update.Nodes != nil {
		if len(update.Nodes) == 0 {
			return nil, apierr.InvalidArgument("network must contain at least one node")
		}
		if err := validateNodes(update.Nodes); err != nil {
			return nil, err
		}
		network.Nodes = update.Nodes
	}
	if update.Links != nil {
		network.Links = update.Links
	}
	if update.Settings != nil {
		network.Settings = update.Settings
	}

	links, err := NormalizeLinks(network.Nodes, network.Links)
	if err != nil {
		return nil, err
	}
	network.Links = links
	network.UpdatedTs = time.Now().Unix()
	network.Metadata = ComputeMetadata(network.Nodes, network.Links)

	record, err := encodeNetwork(network)
	if err != nil {
		return nil, apierr.StorageFailure("failed to encode network", err)
	}
	if err := s.driver.UpsertNetworkRecord(ctx, record); err != nil {
		return nil, apierr.StorageFailure("failed to persist network", err)
	}
	return network, nil
}

// DeleteNetwork removes a network by id.
func (s *Store) DeleteNetwork(ctx context.Context, id string) error {
	unlock := s.networkLocks.Lock(id)
	defer unlock()

	deleted, err := s.driver.DeleteNetworkRecord(ctx, id)
	if err != nil {
		return apierr.StorageFailure("failed to delete network record", err)
	}
	if !deleted {
		return apierr.NotFoundf("network %s not found", id)
	}
	return nil
}

// GetNetworkStats scans all persisted networks. Acceptable for the
// small-to-moderate record counts this store targets.
func (s *Store) GetNetworkStats(ctx context.Context) (*NetworkStats, error) {
	records, err := s.driver.ListNetworkRecords(ctx)
	if err != nil {
		return nil, apierr.StorageFailure("failed to list network records", err)
	}

	stats := &NetworkStats{TotalGraphs: len(records)}
	for _, record := range records {
		network, err := decodeNetwork(record)
		if err != nil {
			return nil, err
		}
		stats.TotalNodes += len(network.Nodes)
		stats.TotalLinks += len(network.Links)
		stats.TotalStorageBytes += int64(len(record.Payload))
	}
	if stats.TotalGraphs > 0 {
		stats.AverageGraphSize = float64(stats.TotalNodes) / float64(stats.TotalGraphs)
	}
	return stats, nil
}

// ComputeMetadata derives network metadata from nodes and links.
func ComputeMetadata(nodes []*NetworkNode, links []*NetworkLink) NetworkMetadata {
	metadata := NetworkMetadata{
		NodeCount: len(nodes),
		LinkCount: len(links),
	}

	genreSet := map[string]struct{}{}
	ratingSum, ratingCount := 0.0, 0
	for _, node := range nodes {
		if node.Depth > metadata.MaxDepth {
			metadata.MaxDepth = node.Depth
		}
		for _, genre := range node.Genres {
			genreSet[genre] = struct{}{}
		}
		if node.Rating != nil {
			ratingSum += *node.Rating
			ratingCount++
		}
	}

	for genre := range genreSet {
		metadata.Genres = append(metadata.Genres, genre)
	}
	sort.Strings(metadata.Genres)

	if ratingCount > 0 {
		avg := ratingSum / float64(ratingCount)
		metadata.AverageRating = &avg
	}
	return metadata
}

// NormalizeLinks canonicalizes links to unordered pairs, dropping self-loops
// and duplicates. A link referencing a node id absent from nodes is an error.
func NormalizeLinks(nodes []*NetworkNode, links []*NetworkLink) ([]*NetworkLink, error) {
	nodeIDs := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		nodeIDs[node.ID] = struct{}{}
	}

	seen := map[[2]string]struct{}{}
	normalized := make([]*NetworkLink, 0, len(links))
	for _, link := range links {
		if link.Source == "" || link.Target == "" {
			return nil, apierr.InvalidArgument("link endpoints must carry a node id")
		}
		if _, ok := nodeIDs[link.Source]; !ok {
			return nil, apierr.InvalidArgument("link references unknown node " + link.Source)
		}
		if _, ok := nodeIDs[link.Target]; !ok {
			return nil, apierr.InvalidArgument("link references unknown node " + link.Target)
		}
		if link.Source == link.Target {
			continue
		}
		source, target := link.Source, link.Target
		if target < source {
			source, target = target, source
		}
		pair := [2]string{source, target}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		normalized = append(normalized, &NetworkLink{Source: source, Target: target})
	}
	return normalized, nil
}

func validateNodes(nodes []*NetworkNode) error {
	seen := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if node.ID == "" {
			return apierr.InvalidArgument("network node is missing an id")
		}
		if _, ok := seen[node.ID]; ok {
			return apierr.InvalidArgument("duplicate node id " + node.ID)
		}
		seen[node.ID] = struct{}{}
	}
	return nil
}

func encodeNetwork(network *Network) (*NetworkRecord, error) {
	payload, err := json.Marshal(networkPayload{
		Nodes:    network.Nodes,
		Links:    network.Links,
		Settings: network.Settings,
		Metadata: network.Metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal network payload")
	}
	return &NetworkRecord{
		ID:          network.ID,
		Name:        network.Name,
		Description: network.Description,
		SeedID:      network.SeedID,
		CreatedTs:   network.CreatedTs,
		UpdatedTs:   network.UpdatedTs,
		Payload:     string(payload),
	}, nil
}

func decodeNetwork(record *NetworkRecord) (*Network, error) {
	var payload networkPayload
	if err := json.Unmarshal([]byte(record.Payload), &payload); err != nil {
		return nil, apierr.StorageFailure("failed to decode network payload", err)
	}
	return &Network{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		SeedID:      record.SeedID,
		Nodes:       payload.Nodes,
		Links:       payload.Links,
		Settings:    payload.Settings,
		CreatedTs:   record.CreatedTs,
		UpdatedTs:   record.UpdatedTs,
		Metadata:    payload.Metadata,
	}, nil
}
