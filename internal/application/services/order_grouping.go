package services

import (
	"errors"
	"fmt"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// ErrOrphanedPanelOrder is returned by GroupOrdersStrict when an order claims
// panel membership without naming its panel
var ErrOrphanedPanelOrder = errors.New("test order is part of a panel but has no panel")

// OrderGroups partitions an accession's test orders for display
type OrderGroups struct {
	Standalone []entities.TestOrder       `json:"standaloneTestOrders"`
	Panels     []entities.PanelOrderGroup `json:"panelOrders"`
	// Orphaned lists orders flagged as panel members that carry no panel.
	// They are also present in Standalone.
	Orphaned []string `json:"orphanedTestOrderIds,omitempty"`
}

// GroupOrders splits flat test orders into standalone orders and panel groups.
// Panels appear in order of first appearance and the first member seen fixes
// the panel's display fields. Members keep input order. The input is not
// modified.
func GroupOrders(orders []entities.TestOrder) OrderGroups {
	groups := OrderGroups{
		Standalone: []entities.TestOrder{},
		Panels:     []entities.PanelOrderGroup{},
	}
	index := make(map[string]int)

	for _, order := range orders {
		if !order.IsPartOfPanel || order.Panel == nil {
			if order.IsPartOfPanel {
				groups.Orphaned = append(groups.Orphaned, order.ID)
			}
			groups.Standalone = append(groups.Standalone, order)
			continue
		}

		i, seen := index[order.Panel.ID]
		if !seen {
			i = len(groups.Panels)
			index[order.Panel.ID] = i
			groups.Panels = append(groups.Panels, entities.PanelOrderGroup{
				ID:           order.Panel.ID,
				PanelCode:    order.Panel.PanelCode,
				PanelName:    order.Panel.PanelName,
				PanelVersion: order.Panel.PanelVersion,
				TestOrders:   []entities.TestOrder{},
			})
		}
		groups.Panels[i].TestOrders = append(groups.Panels[i].TestOrders, order)
	}

	return groups
}

// GroupOrdersStrict behaves like GroupOrders but rejects orphaned panel members
func GroupOrdersStrict(orders []entities.TestOrder) (OrderGroups, error) {
	groups := GroupOrders(orders)
	if len(groups.Orphaned) > 0 {
		return groups, fmt.Errorf("%w: %v", ErrOrphanedPanelOrder, groups.Orphaned)
	}
	return groups, nil
}
