package backend

import (
	"strings"
)

// Backend endpoints, relative to the configured base URL.
const (
	EndpointLogin            = "owner/login"
	EndpointLogout           = "owner/logout"
	EndpointAgents           = "owner/agents"
	EndpointOwners           = "owner/owners"
	EndpointModules          = "owner/modules"
	EndpointAmenities        = "owner/amenities"
	EndpointAreas            = "owner/areas"
	EndpointBanners          = "owner/banners"
	EndpointBlogs            = "owner/blogs"
	EndpointTypes            = "owner/types"
	EndpointFeatures         = "owner/features"
	EndpointLocations        = "owner/locations"
	EndpointPropertyListings = "owner/property_listings"
	EndpointPropertyImages   = "owner/property/images"
	EndpointFloorPlans       = "owner/property/floor-plan"
	EndpointProfile          = "owner/profile"
	EndpointStatistics       = "owner/statistics"
	EndpointContacts         = "owner/contacts"
)

// ItemPath returns the sub-resource path of one record.
func ItemPath(endpoint, id string) string {
	return strings.TrimSuffix(endpoint, "/") + "/" + id
}

// routeLabel collapses record ids so metric labels stay bounded.
func routeLabel(endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	for i, p := range parts {
		if p != "" && isID(p) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isID(s string) bool {
	digits := true
	for _, r := range s {
		if r < '0' || r > '9' {
			digits = false
			break
		}
	}
	if digits {
		return true
	}
	// UUIDs.
	return len(s) == 36 && strings.Count(s, "-") == 4
}
