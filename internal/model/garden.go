package model

import "time"

// Garden represents a community-garden listing in the `gardens` table.
// A garden belongs to an owner and carries a geolocation plus optional
// descriptive fields. Tags is populated by the repository when the
// caller asks for an eager load; it is not an implicit relation.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user ID of the garden owner.
//  Name        – human readable listing name.
//  Description – optional free text about the garden.
//  Latitude    – latitude of the plot, required.
//  Longitude   – longitude of the plot, required.
//  StreetName  – optional street name.
//  Photo       – optional URL or path to a photo.
//  IsPublic    – whether the listing is publicly visible.
//  Joinable    – whether new members may join.
//  Tags        – tags attached via the garden_tags join.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Garden struct {
	ID          uint64    // gardens.id
	OwnerID     uint64    // gardens.owner_id
	Name        string    // gardens.name
	Description *string   // gardens.description (nullable)
	Latitude    float64   // gardens.latitude
	Longitude   float64   // gardens.longitude
	StreetName  *string   // gardens.street_name (nullable)
	Photo       *string   // gardens.photo (nullable)
	IsPublic    bool      // gardens.is_public
	Joinable    bool      // gardens.joinable
	Tags        []Tag     // loaded from garden_tags
	CreatedAt   time.Time // gardens.created_at
	UpdatedAt   time.Time // gardens.updated_at
}
