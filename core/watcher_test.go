package core

import (
	"testing"

	"github.com/DanSleeman/anichart-filter/schema"
)

func TestClassifyBatch(t *testing.T) {
	cases := []struct {
		name         string
		records      []schema.MutationRecord
		wantControls bool
		wantCards    bool
	}{
		{
			name: "card added",
			records: []schema.MutationRecord{
				{Kind: schema.MutationChildList, Added: []schema.NodeClass{{Card: true}}},
			},
			wantCards: true,
		},
		{
			name: "card removed",
			records: []schema.MutationRecord{
				{Kind: schema.MutationChildList, Removed: []schema.NodeClass{{Card: true}}},
			},
			wantCards: true,
		},
		{
			name: "controls subtree replaced",
			records: []schema.MutationRecord{
				{Kind: schema.MutationChildList, Added: []schema.NodeClass{{Controls: true}}},
			},
			wantControls: true,
		},
		{
			name: "controls root removed from container",
			records: []schema.MutationRecord{
				{
					Kind:    schema.MutationChildList,
					Target:  schema.NodeClass{Controls: true},
					Removed: []schema.NodeClass{{}},
				},
			},
			wantControls: true,
		},
		{
			name: "children replaced inside card",
			records: []schema.MutationRecord{
				{
					Kind:    schema.MutationChildList,
					Target:  schema.NodeClass{Card: true},
					Added:   []schema.NodeClass{{}},
					Removed: []schema.NodeClass{{}},
				},
			},
			wantCards: true,
		},
		{
			name: "style change inside card",
			records: []schema.MutationRecord{
				{Kind: schema.MutationAttribute, Target: schema.NodeClass{Card: true}},
			},
			wantCards: true,
		},
		{
			name: "style change outside cards",
			records: []schema.MutationRecord{
				{Kind: schema.MutationAttribute, Target: schema.NodeClass{}},
			},
		},
		{
			name: "unrelated nodes",
			records: []schema.MutationRecord{
				{Kind: schema.MutationChildList, Added: []schema.NodeClass{{}, {}}},
			},
		},
		{
			name: "both flags across records",
			records: []schema.MutationRecord{
				{Kind: schema.MutationChildList, Added: []schema.NodeClass{{Controls: true}}},
				{Kind: schema.MutationAttribute, Target: schema.NodeClass{Card: true}},
				{Kind: schema.MutationChildList, Added: []schema.NodeClass{{Card: true}}},
			},
			wantControls: true,
			wantCards:    true,
		},
		{
			name:    "empty batch",
			records: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			controls, cards := classifyBatch(tc.records)
			if controls != tc.wantControls || cards != tc.wantCards {
				t.Fatalf("classifyBatch = controls %v, cards %v; want %v, %v", controls, cards, tc.wantControls, tc.wantCards)
			}
		})
	}
}

func TestHandleBatchFiresEachSignalOnce(t *testing.T) {
	var controls, cards int
	w := &watcher{
		onControlsChanged: func() { controls++ },
		onCardsChanged:    func() { cards++ },
	}
	w.HandleBatch([]schema.MutationRecord{
		{Kind: schema.MutationChildList, Added: []schema.NodeClass{{Card: true}, {Card: true}}},
		{Kind: schema.MutationAttribute, Target: schema.NodeClass{Card: true}},
		{Kind: schema.MutationChildList, Removed: []schema.NodeClass{{Controls: true}}},
	})
	if controls != 1 {
		t.Fatalf("expected one controls signal, got %d", controls)
	}
	if cards != 1 {
		t.Fatalf("expected one cards signal, got %d", cards)
	}
}

func TestHandleBatchQuietBatchFiresNothing(t *testing.T) {
	w := &watcher{
		onControlsChanged: func() { t.Fatalf("unexpected controls signal") },
		onCardsChanged:    func() { t.Fatalf("unexpected cards signal") },
	}
	w.HandleBatch([]schema.MutationRecord{
		{Kind: schema.MutationChildList, Added: []schema.NodeClass{{}}},
		{Kind: schema.MutationAttribute},
	})
}
