package model

// NodeType is the closed set of product-graph vertex labels. Extending it is
// an explicit schema change, mirrored in driver indices and the seeder.
type NodeType string

const (
	NodePanel          NodeType = "Panel"
	NodeModule         NodeType = "Module"
	NodeInternalModule NodeType = "InternalModule"
	NodeDevice         NodeType = "Device"
	NodeBase           NodeType = "Base"
)

// NodeTypes lists all labels in a stable order for stats and seeding.
func NodeTypes() []NodeType {
	return []NodeType{NodePanel, NodeModule, NodeInternalModule, NodeDevice, NodeBase}
}

func ValidNodeType(s string) bool {
	switch NodeType(s) {
	case NodePanel, NodeModule, NodeInternalModule, NodeDevice, NodeBase:
		return true
	}
	return false
}

// Node is a typed product-graph vertex. ID is the stable external identifier,
// usually the manufacturer SKU ("4100ES"). The retrieval core only reads
// nodes; ingestion owns creation.
type Node struct {
	ID         string                 `json:"id"`
	Type       NodeType               `json:"type"`
	Name       string                 `json:"name,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Description returns the description attribute when present.
func (n *Node) Description() string {
	if n.Attributes == nil {
		return ""
	}
	if d, ok := n.Attributes["description"].(string); ok {
		return d
	}
	return ""
}
