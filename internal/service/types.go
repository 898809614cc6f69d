// Package service contains the read-only prefecture catalog and the map
// event bus.
package service

import "github.com/joeblew999/plat-japanmap/internal/geometry"

// RegionInfo is the catalog view of one prefecture.
type RegionInfo struct {
	geometry.Properties
	Group   string  `json:"group,omitempty" doc:"Region group name" example:"kanto"`
	Color   string  `json:"color,omitempty" doc:"Group fill color (CSS)" example:"#fca5a5"`
	AreaKm2 float64    `json:"areaKm2" doc:"Approximate land area in square kilometres"`
	BBox    [4]float64 `json:"bbox" doc:"Bounding box as [minLon, minLat, maxLon, maxLat]"`
}

// GroupInfo describes one region group.
type GroupInfo struct {
	Name        string `json:"name" doc:"Group name" example:"kanto"`
	Color       string `json:"color" doc:"Fill color (CSS)" example:"#fca5a5"`
	Prefectures []int  `json:"prefectures" doc:"Prefecture ids in the group"`
}
