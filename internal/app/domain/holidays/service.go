package holidays

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
)

var (
	AllPrefix         = query.Key{"holidays", "all"}
	BusinessDayPrefix = query.Key{"businessDays"}
)

func YearKey(year int) query.Key     { return query.Key{"holidays", "all", year} }
func CheckKey(date string) query.Key { return query.Key{"businessDays", "check", date} }
func NextKey(date string) query.Key  { return query.Key{"businessDays", "next", date} }

type API interface {
	ListHolidays(ctx context.Context, year int) ([]models.FederalHoliday, error)
	CreateHoliday(ctx context.Context, req models.HolidayRequest) (models.FederalHoliday, error)
	UpdateHoliday(ctx context.Context, id string, req models.HolidayRequest) (models.FederalHoliday, error)
	DeleteHoliday(ctx context.Context, id string) error
	GenerateHolidays(ctx context.Context, year int) ([]models.FederalHoliday, error)
	CheckBusinessDay(ctx context.Context, date string) (models.BusinessDayCheck, error)
	NextBusinessDay(ctx context.Context, date string) (models.NextBusinessDay, error)
}

type Service struct {
	api API
	q   *query.Client
}

func NewService(api API, q *query.Client) *Service {
	return &Service{api: api, q: q}
}

func (s *Service) List(ctx context.Context, year int) ([]models.FederalHoliday, error) {
	return query.Fetch(ctx, s.q, query.Query[[]models.FederalHoliday]{
		Key: YearKey(year),
		Fn: func(ctx context.Context) ([]models.FederalHoliday, error) {
			return s.api.ListHolidays(ctx, year)
		},
	})
}

func (s *Service) CheckBusinessDay(ctx context.Context, date string) (models.BusinessDayCheck, error) {
	if err := validDate(date); err != nil {
		return models.BusinessDayCheck{}, err
	}
	return query.Fetch(ctx, s.q, query.Query[models.BusinessDayCheck]{
		Key: CheckKey(date),
		Fn: func(ctx context.Context) (models.BusinessDayCheck, error) {
			return s.api.CheckBusinessDay(ctx, date)
		},
	})
}

func (s *Service) NextBusinessDay(ctx context.Context, date string) (models.NextBusinessDay, error) {
	if err := validDate(date); err != nil {
		return models.NextBusinessDay{}, err
	}
	return query.Fetch(ctx, s.q, query.Query[models.NextBusinessDay]{
		Key: NextKey(date),
		Fn: func(ctx context.Context) (models.NextBusinessDay, error) {
			return s.api.NextBusinessDay(ctx, date)
		},
	})
}

// Create adds a holiday. It appears in its year's list right away and is replaced by the stored
// record once the backend confirms it.
func (s *Service) Create(ctx context.Context, req models.HolidayRequest) (models.FederalHoliday, error) {
	year, err := yearOf(req.Date)
	if err != nil {
		return models.FederalHoliday{}, err
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.HolidayRequest, models.FederalHoliday]{
		Name:    "createHoliday",
		Affects: []query.Key{YearKey(year)},
		Optimistic: func(tx *query.Tx, r models.HolidayRequest) {
			query.Update(tx, YearKey(year), func(list []models.FederalHoliday) ([]models.FederalHoliday, bool) {
				return sortByDate(append(slices.Clone(list), models.FederalHoliday{
					Name: r.Name, Date: r.Date, Year: year, IsRecurring: r.IsRecurring,
				})), true
			})
		},
		Fn: s.api.CreateHoliday,
		OnSuccess: func(tx *query.Tx, r models.HolidayRequest, res models.FederalHoliday) {
			query.Update(tx, YearKey(year), func(list []models.FederalHoliday) ([]models.FederalHoliday, bool) {
				out := slices.Clone(list)
				for i, h := range out {
					if h.ID == "" && h.Date == r.Date && h.Name == r.Name {
						out[i] = res
						return out, true
					}
				}
				return sortByDate(append(out, res)), true
			})
		},
	}, req)
}

// Update edits a holiday in place. Moving it to another year refetches both years.
func (s *Service) Update(ctx context.Context, id string, req models.HolidayRequest) (models.FederalHoliday, error) {
	if _, err := yearOf(req.Date); err != nil {
		return models.FederalHoliday{}, err
	}
	return query.Mutate(ctx, s.q, query.Mutation[models.HolidayRequest, models.FederalHoliday]{
		Name:    "updateHoliday",
		Affects: []query.Key{AllPrefix},
		Optimistic: func(tx *query.Tx, r models.HolidayRequest) {
			s.rewrite(tx, id, func(h models.FederalHoliday) models.FederalHoliday {
				h.Name, h.Date, h.IsRecurring = r.Name, r.Date, r.IsRecurring
				return h
			})
		},
		Fn: func(ctx context.Context, r models.HolidayRequest) (models.FederalHoliday, error) {
			return s.api.UpdateHoliday(ctx, id, r)
		},
		OnSuccess: func(tx *query.Tx, _ models.HolidayRequest, res models.FederalHoliday) {
			s.rewrite(tx, id, func(models.FederalHoliday) models.FederalHoliday { return res })
			tx.Invalidate(AllPrefix)
		},
	}, req)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := query.Mutate(ctx, s.q, query.Mutation[string, struct{}]{
		Name:    "deleteHoliday",
		Affects: []query.Key{AllPrefix},
		Optimistic: func(tx *query.Tx, id string) {
			query.Update(tx, AllPrefix, func(list []models.FederalHoliday) ([]models.FederalHoliday, bool) {
				i := slices.IndexFunc(list, func(h models.FederalHoliday) bool { return h.ID == id })
				if i < 0 {
					return list, false
				}
				return slices.Delete(slices.Clone(list), i, i+1), true
			})
		},
		Fn: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, s.api.DeleteHoliday(ctx, id)
		},
	}, id)
	return err
}

// Generate asks the backend for the federal calendar of year and caches it.
func (s *Service) Generate(ctx context.Context, year int) ([]models.FederalHoliday, error) {
	if year < 1900 || year > 9999 {
		return nil, fmt.Errorf("year %d out of range: %w", year, models.ErrValidation)
	}
	return query.Mutate(ctx, s.q, query.Mutation[int, []models.FederalHoliday]{
		Name:    "generateHolidays",
		Affects: []query.Key{YearKey(year)},
		Fn:      s.api.GenerateHolidays,
		OnSuccess: func(tx *query.Tx, year int, res []models.FederalHoliday) {
			tx.Set(YearKey(year), sortByDate(slices.Clone(res)))
		},
	}, year)
}

func (s *Service) rewrite(tx *query.Tx, id string, fn func(models.FederalHoliday) models.FederalHoliday) {
	query.Update(tx, AllPrefix, func(list []models.FederalHoliday) ([]models.FederalHoliday, bool) {
		i := slices.IndexFunc(list, func(h models.FederalHoliday) bool { return h.ID == id })
		if i < 0 {
			return list, false
		}
		out := slices.Clone(list)
		out[i] = fn(out[i])
		return sortByDate(out), true
	})
}

func sortByDate(list []models.FederalHoliday) []models.FederalHoliday {
	slices.SortStableFunc(list, func(a, b models.FederalHoliday) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return list
}

func validDate(date string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("date %q is not YYYY-MM-DD: %w", date, models.ErrValidation)
	}
	return nil
}

func yearOf(date string) (int, error) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return 0, fmt.Errorf("date %q is not YYYY-MM-DD: %w", date, models.ErrValidation)
	}
	return t.Year(), nil
}
