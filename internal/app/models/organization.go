package models

import (
	"net/url"
	"strconv"
	"time"
)

type Organization struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	RoutingNumber string    `json:"routingNumber,omitempty"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type OrganizationRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	RoutingNumber string `json:"routingNumber,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	Active        *bool  `json:"active,omitempty"`
}

type OrganizationFilters struct {
	Search string `json:"search,omitempty"`
	Active *bool  `json:"active,omitempty"`
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func (f OrganizationFilters) Values() url.Values {
	v := url.Values{}
	setIf(v, "search", f.Search)
	if f.Active != nil {
		v.Set("active", strconv.FormatBool(*f.Active))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// ValidRoutingNumber reports whether s is a nine digit ABA routing number with a valid check
// digit.
func ValidRoutingNumber(s string) bool {
	if len(s) != 9 {
		return false
	}
	weights := [3]int{3, 7, 1}
	sum := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		sum += int(r-'0') * weights[i%3]
	}
	return sum%10 == 0
}
