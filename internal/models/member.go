package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender values accepted at signup. The French labels are what the
// club's forms submit and what the stored documents carry.
const (
	GenderFemale = "Femme"
	GenderMale   = "Homme"
	GenderOther  = "Autre"
)

// Member roles. Every signup starts as RoleMember; RoleAdmin is only
// ever assigned out of band.
const (
	RoleMember = "Membre"
	RoleAdmin  = "Admin"
)

// DefaultRecommendation is the advisory string attached to every new
// profile.
const DefaultRecommendation = "être bien équipé"

// Member is a club member profile stored in the "users" collection.
// Legacy "adhesion" documents decode into the same shape; fields the
// legacy collection never had simply stay zero.
type Member struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username       string             `bson:"identite" json:"identite"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	Gender         string             `bson:"genre" json:"genre"`
	IsStudent      bool               `bson:"etudiant" json:"etudiant"`
	IsAdult        bool               `bson:"majeur" json:"majeur"`
	Role           string             `bson:"role" json:"role"`
	PhotoURL       string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Recommendation string             `bson:"recommandation,omitempty" json:"recommandation,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidGender reports whether g is one of the accepted gender labels.
func ValidGender(g string) bool {
	return g == GenderFemale || g == GenderMale || g == GenderOther
}

// PhotoURLFor derives the deterministic avatar URL for a document id.
func PhotoURLFor(id primitive.ObjectID) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/100/100", id.Hex())
}

// Sanitized returns a copy of the member with the stored secret
// removed. Every profile that leaves the service layer goes through
// this.
func (m *Member) Sanitized() *Member {
	out := *m
	out.Password = ""
	return &out
}
