// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Server exposes the lookup pipeline as a small JSON API.
type Server struct {
	geocoder   Geocoder
	aggregator *Aggregator
}

// NewServer creates a server over the given collaborators.
func NewServer(geocoder Geocoder, aggregator *Aggregator) *Server {
	return &Server{
		geocoder:   geocoder,
		aggregator: aggregator,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/categories", s.listCategories)
	r.GET("/api/helplines", s.listHelplines)
	r.GET("/api/search", s.search)

	return r
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) listHelplines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"helplines": Helplines()})
}

type searchResponse struct {
	Origin     SearchOrigin `json:"origin"`
	RadiusKm   float64      `json:"radius_km"`
	Count      int          `json:"count"`
	Categories []string     `json:"categories"`
	NearestKm  float64      `json:"nearest_km"`
	Places     []Place      `json:"places"`
	Warnings   []Warning    `json:"warnings,omitempty"`
}

// search handles GET /api/search?place=...&radius=10&categories=a,b.
// An omitted categories parameter selects the whole table.
func (s *Server) search(c *gin.Context) {
	place := strings.TrimSpace(c.Query("place"))
	if place == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place is required"})

		return
	}

	radiusKm := 10.0

	if v := c.Query("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be a positive number"})

			return
		}

		radiusKm = parsed
	}

	categoryNames := CategoryNames()
	if v := c.Query("categories"); v != "" {
		categoryNames = strings.Split(v, ",")
		for i := range categoryNames {
			categoryNames[i] = strings.TrimSpace(categoryNames[i])
		}
	}

	origin, err := s.geocoder.Geocode(c.Request.Context(), place)
	if err != nil {
		if IsGeocodeFailure(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})

			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	rs, err := s.aggregator.Search(c.Request.Context(), *origin, radiusKm, categoryNames)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, searchResponse{
		Origin:     rs.Origin,
		RadiusKm:   rs.RadiusKm,
		Count:      len(rs.Places),
		Categories: rs.Categories(),
		NearestKm:  rs.NearestKm(),
		Places:     rs.Places,
		Warnings:   rs.Warnings,
	})
}
