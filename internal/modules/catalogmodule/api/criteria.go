package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

const opBindCriteria = "bind_criteria"

// listQuery is the query string accepted by every list and count endpoint.
// Id lists may be repeated (?genreIds=a&genreIds=b) or comma separated.
type listQuery struct {
	Term string `form:"term"`

	CreatedFrom  string `form:"createdFrom"`
	CreatedTo    string `form:"createdTo"`
	UpdatedFrom  string `form:"updatedFrom"`
	UpdatedTo    string `form:"updatedTo"`
	ReleasedFrom string `form:"releasedFrom"`
	ReleasedTo   string `form:"releasedTo"`
	BornFrom     string `form:"bornFrom"`
	BornTo       string `form:"bornTo"`
	DiedFrom     string `form:"diedFrom"`
	DiedTo       string `form:"diedTo"`

	CountryIDs []string `form:"countryIds"`
	GenreIDs   []string `form:"genreIds"`
	UserIDs    []string `form:"userIds"`
	RoleTypes  []string `form:"roleTypes"`

	Sort      string `form:"sort"`
	Direction string `form:"direction"`
	Page      string `form:"page"`
	Size      string `form:"size"`
}

// dateLayouts are tried in order; a bare date is midnight UTC.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, catalogerrors.InvalidCriteria(opBindCriteria, "%s: %q is not a date", name, value).WithField(name)
}

func parseInt(name, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, catalogerrors.InvalidCriteria(opBindCriteria, "%s: %q is not a number", name, value).WithField(name)
	}
	return n, nil
}

func splitIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// bindCriteria reads types.Criteria from the request's query string.
func bindCriteria(c *gin.Context) (types.Criteria, error) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return types.Criteria{}, catalogerrors.InvalidCriteria(opBindCriteria, "%v", err)
	}

	crit := types.Criteria{
		Term:       q.Term,
		CountryIDs: splitIDs(q.CountryIDs),
		GenreIDs:   splitIDs(q.GenreIDs),
		UserIDs:    splitIDs(q.UserIDs),
		SortField:  q.Sort,
	}
	for _, rt := range splitIDs(q.RoleTypes) {
		crit.RoleTypes = append(crit.RoleTypes, types.RoleType(strings.ToUpper(rt)))
	}

	ranges := []struct {
		from, to   string
		fromV, toV string
		target     *types.DateRange
	}{
		{"createdFrom", "createdTo", q.CreatedFrom, q.CreatedTo, &crit.Created},
		{"updatedFrom", "updatedTo", q.UpdatedFrom, q.UpdatedTo, &crit.Updated},
		{"releasedFrom", "releasedTo", q.ReleasedFrom, q.ReleasedTo, &crit.Released},
		{"bornFrom", "bornTo", q.BornFrom, q.BornTo, &crit.Born},
		{"diedFrom", "diedTo", q.DiedFrom, q.DiedTo, &crit.Died},
	}
	for _, r := range ranges {
		var err error
		if r.target.From, err = parseDate(r.from, r.fromV); err != nil {
			return types.Criteria{}, err
		}
		if r.target.To, err = parseDate(r.to, r.toV); err != nil {
			return types.Criteria{}, err
		}
	}

	dir, err := types.ParseDirection(q.Direction)
	if err != nil {
		return types.Criteria{}, err
	}
	crit.Direction = dir

	if crit.Page, err = parseInt("page", q.Page); err != nil {
		return types.Criteria{}, err
	}
	if crit.Size, err = parseInt("size", q.Size); err != nil {
		return types.Criteria{}, err
	}
	return crit, nil
}
