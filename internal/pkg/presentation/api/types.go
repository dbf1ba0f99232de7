package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diwise/quakemap/internal/pkg/dataset"
)

type Feature struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Location  Location `json:"location"`
	Magnitude float64  `json:"magnitude"`
	Title     string   `json:"title"`
	Time      int64    `json:"time"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewFeature(f dataset.PointFeature) Feature {
	return Feature{
		ID:        f.ID,
		Type:      "Earthquake",
		Location:  Location{Latitude: f.Lat(), Longitude: f.Lon()},
		Magnitude: f.Magnitude,
		Title:     f.Title,
		Time:      f.Time,
	}
}

/* - - - - - - - - - - */

type meta struct {
	TotalRecords uint64  `json:"totalRecords"`
	Offset       *uint64 `json:"offset,omitempty"`
	Limit        *uint64 `json:"limit,omitempty"`
	Count        *uint64 `json:"count,omitempty"`
}

type links struct {
	Self  *string `json:"self,omitempty"`
	First *string `json:"first,omitempty"`
	Prev  *string `json:"prev,omitempty"`
	Next  *string `json:"next,omitempty"`
	Last  *string `json:"last,omitempty"`
}

type ApiResponse struct {
	Meta  *meta  `json:"meta,omitempty"`
	Data  any    `json:"data"`
	Links *links `json:"links,omitempty"`
}

func NewApiResponse(r *http.Request, data any, count, total, offset, limit uint64) ApiResponse {
	meta := &meta{
		TotalRecords: total,
	}

	if offset > 0 {
		meta.Offset = &offset
	}

	if count != total {
		meta.Limit = &limit
		meta.Count = &count
	}

	return ApiResponse{
		Meta:  meta,
		Data:  data,
		Links: createLinks(r.URL, meta),
	}
}

func (r ApiResponse) Byte() []byte {
	b, _ := json.Marshal(r)
	return b
}

func createLinks(u *url.URL, m *meta) *links {
	if m == nil || m.TotalRecords == 0 || m.Count == nil || m.Limit == nil || *m.Limit == 0 {
		return nil
	}

	query := u.Query()
	link := *u

	newUrl := func(offset uint64) *string {
		query.Set("offset", strconv.FormatUint(offset, 10))
		link.RawQuery = query.Encode()
		s := link.String()
		return &s
	}

	var offset uint64
	if m.Offset != nil {
		offset = *m.Offset
	}

	limit := *m.Limit
	last := ((m.TotalRecords - 1) / limit) * limit

	l := &links{
		Self:  newUrl(offset),
		First: newUrl(0),
		Last:  newUrl(last),
	}

	if offset+limit < m.TotalRecords {
		l.Next = newUrl(offset + limit)
	}

	if offset >= limit {
		l.Prev = newUrl(offset - limit)
	}

	return l
}
