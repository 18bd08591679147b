package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestBuildSaleFilter(t *testing.T) {
	agentID := uuid.MustParse("7b8a1f70-6c4b-4b87-9f2e-2f1c7a3d9e01")

	tests := []struct {
		name      string
		filter    SaleFilter
		wantWhere string
		wantArgs  int
	}{
		{
			name:      "empty filter",
			filter:    SaleFilter{},
			wantWhere: "",
			wantArgs:  0,
		},
		{
			name:      "status only",
			filter:    SaleFilter{SaleStatus: "Cancelled"},
			wantWhere: " WHERE sale_status = $1",
			wantArgs:  1,
		},
		{
			name:      "substring filters use ILIKE",
			filter:    SaleFilter{PartyCode: "PC1", NMIMirn: "6001"},
			wantWhere: " WHERE party_code ILIKE $1 AND nmi_mirn ILIKE $2",
			wantArgs:  2,
		},
		{
			name: "all filters numbered in order",
			filter: SaleFilter{
				AgentID:     uuid.NullUUID{UUID: agentID, Valid: true},
				ChannelName: "SIQ - Residential (SIVR)",
				SaleStatus:  "Unverified",
				PartyCode:   "PC",
				NMIMirn:     "60",
			},
			wantWhere: " WHERE agent_id = $1 AND channel_name = $2 AND sale_status = $3" +
				" AND party_code ILIKE $4 AND nmi_mirn ILIKE $5",
			wantArgs: 5,
		},
		{
			name:      "invalid agent id ignored",
			filter:    SaleFilter{AgentID: uuid.NullUUID{UUID: agentID, Valid: false}},
			wantWhere: "",
			wantArgs:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildSaleFilter(tt.filter)
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestBuildSaleFilterSubstringWildcards(t *testing.T) {
	_, args := buildSaleFilter(SaleFilter{PartyCode: "ABC"})
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
	if got := args[0].(string); got != "%ABC%" {
		t.Errorf("arg = %q, want %q", got, "%ABC%")
	}
}
