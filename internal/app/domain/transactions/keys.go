package transactions

import (
	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

var (
	ListPrefix   = query.Key{"transactions", "list"}
	DetailPrefix = query.Key{"transactions", "detail"}
	StatsKey     = query.Key{"transactions", "stats"}

	entriesListPrefix = query.Key{"transactions", "list", "entries"}
	groupsListPrefix  = query.Key{"transactions", "list", "groups"}
)

func ListKey(f models.TransactionFilters) query.Key {
	return query.Key{"transactions", "list", f}
}

func DetailKey(id string) query.Key {
	return query.Key{"transactions", "detail", id}
}

func EntriesKey(f models.TransactionFilters) query.Key {
	return query.Key{"transactions", "list", "entries", f}
}

func EntryKey(id string) query.Key {
	return query.Key{"transactions", "detail", "entries", id}
}

func GroupsKey(f models.TransactionFilters) query.Key {
	return query.Key{"transactions", "list", "groups", f}
}

func GroupKey(id string) query.Key {
	return query.Key{"transactions", "detail", "groups", id}
}
