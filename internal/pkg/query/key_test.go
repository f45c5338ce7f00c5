package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type listFilters struct {
	Status string `json:"status,omitempty"`
	Page   int    `json:"page,omitempty"`
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"family only", Key{"transactions"}, `["transactions"]`},
		{"detail", Key{"transactions", "detail", "123"}, `["transactions","detail","123"]`},
		{"year", Key{"holidays", "all", 2024}, `["holidays","all",2024]`},
		{"map sorted", Key{"transactions", "list", map[string]any{"status": "pending", "page": 1}}, `["transactions","list",{"page":1,"status":"pending"}]`},
		{"struct normalised", Key{"transactions", "list", listFilters{Status: "pending"}}, `["transactions","list",{"status":"pending"}]`},
		{"empty struct", Key{"transactions", "list", listFilters{}}, `["transactions","list",{}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKeyStructAndMapAgree(t *testing.T) {
	a := Key{"transactions", "list", listFilters{Status: "failed", Page: 2}}
	b := Key{"transactions", "list", map[string]any{"page": 2, "status": "failed"}}
	assert.Equal(t, a.String(), b.String())
}

func TestKeyLargeIntegersStayDistinct(t *testing.T) {
	a := Key{"organizations", "detail", int64(9007199254740993)}
	b := Key{"organizations", "detail", int64(9007199254740992)}
	assert.Equal(t, `["organizations","detail",9007199254740993]`, a.String())
	assert.NotEqual(t, a.String(), b.String())

	nested := Key{"transactions", "list", map[string]any{"orgId": uint64(1<<63 + 1)}}
	assert.Equal(t, `["transactions","list",{"orgId":9223372036854775809}]`, nested.String())
}

func TestKeyHasPrefix(t *testing.T) {
	k := Key{"transactions", "list", listFilters{Status: "pending"}}

	assert.True(t, k.HasPrefix(Key{}))
	assert.True(t, k.HasPrefix(Key{"transactions"}))
	assert.True(t, k.HasPrefix(Key{"transactions", "list"}))
	assert.True(t, k.HasPrefix(k))
	assert.False(t, k.HasPrefix(Key{"transactions", "detail"}))
	assert.False(t, k.HasPrefix(Key{"nacha"}))
	assert.False(t, Key{"transactions"}.HasPrefix(Key{"transactions", "list"}))
	// segment comparison, not string prefix
	assert.False(t, Key{"transactionsX"}.HasPrefix(Key{"transactions"}))
}

func TestKeyAppendDoesNotAlias(t *testing.T) {
	base := make(Key, 1, 4)
	base[0] = "nacha"
	a := base.Append("detail", "1")
	b := base.Append("list")
	assert.Equal(t, `["nacha","detail","1"]`, a.String())
	assert.Equal(t, `["nacha","list"]`, b.String())
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, RealTime, TierFor(Key{"transactions", "stats"}))
	assert.Equal(t, Frequent, TierFor(Key{"transactions", "list"}))
	assert.Equal(t, Frequent, TierFor(Key{"nacha", "stats"}))
	assert.Equal(t, Normal, TierFor(Key{"nacha", "detail", "1"}))
	assert.Equal(t, Stable, TierFor(Key{"config", "all"}))
	assert.Equal(t, Static, TierFor(Key{"holidays", "all", 2024}))
	assert.Equal(t, Static, TierFor(Key{"businessDays", "check", "2024-07-04"}))
	assert.Equal(t, Normal, TierFor(Key{"auth", "detail"}))
}

func TestGraphDependents(t *testing.T) {
	g := DefaultGraph()

	deps := g.Dependents("transactions", "nacha")
	var got []string
	for _, k := range deps {
		got = append(got, k.String())
	}
	assert.ElementsMatch(t, []string{
		`["transactions","stats"]`,
		`["nacha","stats"]`,
		`["transactions"]`,
	}, got)
	assert.Empty(t, g.Dependents("config"))
	assert.Equal(t, `["businessDays"]`, g.Dependents("holidays")[0].String())
}
