package console

import "github.com/auditdeck/auditdeck/internal/api"

// AgentNode is a node in the orchestration hierarchy. Children is computed
// client-side; the orchestrator only transmits flat parent references.
type AgentNode struct {
	api.AgentRecord
	Children []*AgentNode
}

// BuildTree converts a flat list of agent records into a rooted forest.
// A node whose parent id does not resolve to any known node is treated as a
// root (orphan handling for partial data). Records missing an agent id are
// dropped rather than crashing the whole view. The forest is rebuilt from
// scratch on every refresh; nothing incremental survives between calls.
// Complexity O(n); sibling order follows input order.
func BuildTree(records []api.AgentRecord) []*AgentNode {
	byID := make(map[string]*AgentNode, len(records))
	ordered := make([]*AgentNode, 0, len(records))

	for _, rec := range records {
		if rec.AgentID == "" {
			continue
		}
		node := &AgentNode{AgentRecord: rec, Children: []*AgentNode{}}
		byID[rec.AgentID] = node
		ordered = append(ordered, node)
	}

	roots := make([]*AgentNode, 0, len(ordered))
	for _, node := range ordered {
		if parent, ok := byID[node.ParentAgentID]; ok && node.ParentAgentID != "" {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	return roots
}

// FindNode returns the first node in the forest with the given agent id,
// searching depth-first, or nil when absent.
func FindNode(nodes []*AgentNode, agentID string) *AgentNode {
	for _, node := range nodes {
		if node.AgentID == agentID {
			return node
		}
		if found := FindNode(node.Children, agentID); found != nil {
			return found
		}
	}
	return nil
}

// FindAgentName returns the display name of the node with the given id, or
// empty string when the id does not resolve.
func FindAgentName(nodes []*AgentNode, agentID string) string {
	if node := FindNode(nodes, agentID); node != nil {
		return node.AgentName
	}
	return ""
}
