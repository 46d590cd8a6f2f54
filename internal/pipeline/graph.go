package pipeline

import (
	"fmt"

	"github.com/sells-group/company-research/internal/model"
)

const (
	maxProductNodes  = 5
	maxLocationNodes = 3
)

// DeriveGraph builds the relationship graph from a finished profile. The
// result depends only on the profile.
func DeriveGraph(p *model.CompanyProfile) model.Graph {
	const root = "node_company"
	g := model.Graph{
		Nodes: []model.GraphNode{{
			ID:    root,
			Label: p.Name,
			Type:  model.NodeCompany,
			Properties: map[string]string{
				"industry": p.Industry,
				"domain":   p.Domain,
			},
		}},
		Edges: []model.GraphEdge{},
	}

	for i, person := range p.KeyPeople {
		id := fmt.Sprintf("node_person_%d", i)
		g.Nodes = append(g.Nodes, model.GraphNode{
			ID:         id,
			Label:      person.Name,
			Type:       model.NodePerson,
			Properties: map[string]string{"title": person.Title},
		})
		g.Edges = append(g.Edges, model.GraphEdge{Source: id, Target: root, Relation: model.RelWorksAt})
	}

	for i, product := range p.ProductsServices {
		if i >= maxProductNodes {
			break
		}
		id := fmt.Sprintf("node_prod_%d", i)
		g.Nodes = append(g.Nodes, model.GraphNode{ID: id, Label: product, Type: model.NodeProduct})
		g.Edges = append(g.Edges, model.GraphEdge{Source: root, Target: id, Relation: model.RelProduces})
	}

	for i, loc := range p.Locations {
		if i >= maxLocationNodes {
			break
		}
		id := fmt.Sprintf("node_loc_%d", i)
		g.Nodes = append(g.Nodes, model.GraphNode{ID: id, Label: loc, Type: model.NodeLocation})
		g.Edges = append(g.Edges, model.GraphEdge{Source: root, Target: id, Relation: model.RelLocatedAt})
	}
	return g
}
