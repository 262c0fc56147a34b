package crud

import (
	"errors"
	"fmt"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/model"
)

// ErrUnknownEntity is returned for entity names the registry does not hold.
var ErrUnknownEntity = errors.New("unknown entity")

// Registry holds entity schemas in navigation order.
type Registry struct {
	byName map[string]*Entity
	order  []*Entity
}

// NewRegistry creates a registry. Later entities replace earlier ones of the same name.
func NewRegistry(entities ...*Entity) *Registry {
	r := &Registry{byName: make(map[string]*Entity)}
	for _, e := range entities {
		r.Add(e)
	}
	return r
}

// Add registers e.
func (r *Registry) Add(e *Entity) {
	if old, ok := r.byName[e.Name]; ok {
		for i, o := range r.order {
			if o == old {
				r.order[i] = e
			}
		}
	} else {
		r.order = append(r.order, e)
	}
	r.byName[e.Name] = e
}

// Get returns the entity named name.
func (r *Registry) Get(name string) (*Entity, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	return e, nil
}

// All returns every entity in navigation order.
func (r *Registry) All() []*Entity {
	out := make([]*Entity, len(r.order))
	copy(out, r.order)
	return out
}

// Visible returns the entities sess may open.
func (r *Registry) Visible(sess *model.Session) []*Entity {
	var out []*Entity
	for _, e := range r.order {
		if sess.HasModule(e.Module) {
			out = append(out, e)
		}
	}
	return out
}

var crudActions = Actions{Create: true, Edit: true, Delete: true, View: true}

func localizedName(label string) Field {
	return Field{Name: "name", Label: label, Kind: KindText, Required: true, Localized: true}
}

func imageField(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindFile}
}

// DefaultRegistry returns the dashboard's entity screens.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&Entity{
			Name:     "agents",
			Title:    "Agents",
			Endpoint: backend.EndpointAgents,
			Module:   "agents",
			Columns: []Column{
				{Key: "name", Label: "Name"},
				{Key: "email", Label: "Email"},
				{Key: "phone", Label: "Phone"},
			},
			Fields: []Field{
				{Name: "name", Label: "Name", Kind: KindText, Required: true},
				{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
				{Name: "phone", Label: "Phone", Kind: KindText},
				{Name: "password", Label: "Password", Kind: KindPassword, Required: true, CreateOnly: true},
				imageField("image", "Image"),
			},
			Actions:       Actions{Create: true, Edit: true, Delete: true, View: true, QuickView: true},
			ConfirmDelete: true,
			Bulk:          true,
		},
		&Entity{
			Name:     "owners",
			Title:    "Owners",
			Endpoint: backend.EndpointOwners,
			Module:   "owners",
			Columns: []Column{
				{Key: "name", Label: "Name"},
				{Key: "email", Label: "Email"},
				{Key: "phone", Label: "Phone"},
			},
			Fields: []Field{
				{Name: "name", Label: "Name", Kind: KindText, Required: true},
				{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
				{Name: "phone", Label: "Phone", Kind: KindText},
				{Name: "password", Label: "Password", Kind: KindPassword, Required: true, CreateOnly: true},
				imageField("image", "Image"),
			},
			Actions:       Actions{Create: true, Edit: true, Delete: true, View: true, QuickView: true},
			ConfirmDelete: true,
			Bulk:          true,
		},
		&Entity{
			Name:     "property_listings",
			Title:    "Properties",
			Endpoint: backend.EndpointPropertyListings,
			Module:   "properties",
			Columns: []Column{
				{Key: "title", Label: "Title", Localized: true},
				{Key: "price", Label: "Price"},
				{Key: "type", Label: "Type"},
				{Key: "status", Label: "Status"},
			},
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Required: true, Localized: true},
				{Name: "description", Label: "Description", Kind: KindRichText, Localized: true},
				{Name: "price", Label: "Price", Kind: KindNumber, Required: true},
				{Name: "type_id", Label: "Type", Kind: KindSelect, Required: true, OptionsFrom: backend.EndpointTypes},
				{Name: "location_id", Label: "Location", Kind: KindSelect, OptionsFrom: backend.EndpointLocations},
				{Name: "bedrooms", Label: "Bedrooms", Kind: KindNumber},
				{Name: "bathrooms", Label: "Bathrooms", Kind: KindNumber},
				{Name: "size", Label: "Size", Kind: KindNumber},
				{Name: "status", Label: "Status", Kind: KindSelect, Options: []Option{
					{Value: "available", Label: "Available"},
					{Value: "sold", Label: "Sold"},
					{Value: "rented", Label: "Rented"},
				}},
				{Name: "is_featured", Label: "Featured", Kind: KindCheckbox},
			},
			Actions:       Actions{Create: true, Edit: true, Delete: true, View: true, QuickView: true},
			ConfirmDelete: true,
			Bulk:          true,
			DetailPath:    true,
		},
		&Entity{
			Name:          "areas",
			Title:         "Areas",
			Endpoint:      backend.EndpointAreas,
			Module:        "areas",
			Columns:       []Column{{Key: "name", Label: "Name", Localized: true}},
			Fields:        []Field{localizedName("Name")},
			Actions:       crudActions,
			ConfirmDelete: true,
			Bulk:          true,
			Import:        true,
		},
		&Entity{
			Name:     "banners",
			Title:    "Banners",
			Endpoint: backend.EndpointBanners,
			Module:   "banners",
			Columns: []Column{
				{Key: "title", Label: "Title", Localized: true},
				{Key: "link", Label: "Link"},
			},
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Required: true, Localized: true},
				{Name: "link", Label: "Link", Kind: KindText},
				imageField("image", "Image"),
			},
			Actions:       crudActions,
			ConfirmDelete: true,
		},
		&Entity{
			Name:     "blogs",
			Title:    "Blogs",
			Endpoint: backend.EndpointBlogs,
			Module:   "blogs",
			Columns: []Column{
				{Key: "title", Label: "Title", Localized: true},
				{Key: "created_at", Label: "Date"},
			},
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Required: true, Localized: true},
				{Name: "content", Label: "Content", Kind: KindRichText, Required: true, Localized: true},
				imageField("image", "Image"),
			},
			Actions:       crudActions,
			ConfirmDelete: true,
		},
		&Entity{
			Name:     "amenities",
			Title:    "Amenities",
			Endpoint: backend.EndpointAmenities,
			Module:   "amenities",
			Columns:  []Column{{Key: "title", Label: "Title"}},
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Required: true},
				imageField("icon", "Icon"),
			},
			Actions:       crudActions,
			ConfirmDelete: true,
			Bulk:          true,
		},
		&Entity{
			Name:     "features",
			Title:    "Features",
			Endpoint: backend.EndpointFeatures,
			Module:   "features",
			Columns:  []Column{{Key: "name", Label: "Name", Localized: true}},
			Fields: []Field{
				localizedName("Name"),
				imageField("icon", "Icon"),
			},
			Actions:       crudActions,
			ConfirmDelete: true,
		},
		&Entity{
			Name:     "locations",
			Title:    "Locations",
			Endpoint: backend.EndpointLocations,
			Module:   "locations",
			Columns: []Column{
				{Key: "name", Label: "Name", Localized: true},
				{Key: "area", Label: "Area"},
			},
			Fields: []Field{
				localizedName("Name"),
				{Name: "area_id", Label: "Area", Kind: KindSelect, Required: true, OptionsFrom: backend.EndpointAreas},
			},
			Actions:       crudActions,
			ConfirmDelete: true,
		},
		&Entity{
			Name:          "types",
			Title:         "Types",
			Endpoint:      backend.EndpointTypes,
			Module:        "types",
			Columns:       []Column{{Key: "name", Label: "Name", Localized: true}},
			Fields:        []Field{localizedName("Name")},
			Actions:       crudActions,
			ConfirmDelete: true,
		},
		&Entity{
			Name:     "contacts",
			Title:    "Contacts",
			Endpoint: backend.EndpointContacts,
			Module:   "contacts",
			Columns: []Column{
				{Key: "name", Label: "Name"},
				{Key: "email", Label: "Email"},
				{Key: "subject", Label: "Subject"},
			},
			Fields: []Field{
				{Name: "name", Label: "Name", Kind: KindText},
				{Name: "email", Label: "Email", Kind: KindEmail},
				{Name: "phone", Label: "Phone", Kind: KindText},
				{Name: "subject", Label: "Subject", Kind: KindText},
				{Name: "message", Label: "Message", Kind: KindTextarea},
			},
			Actions:      Actions{View: true, Delete: true},
			EmptyMessage: "No messages yet",
		},
	)
}
