package model

// BloodType is reference data, e.g. "O-", "A+".
type BloodType struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// BloodComponent is reference data, e.g. whole blood, RBC, plasma, platelets.
type BloodComponent struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CompatibilityRule states whether a donor blood type may supply a
// component to a recipient blood type. Immutable reference data; the
// priority level is carried for future tie-breaking but not used to
// filter or rank.
type CompatibilityRule struct {
	DonorBloodTypeID     int  `db:"donor_blood_type_id" json:"donor_blood_type_id"`
	RecipientBloodTypeID int  `db:"recipient_blood_type_id" json:"recipient_blood_type_id"`
	ComponentID          int  `db:"component_id" json:"component_id"`
	IsCompatible         bool `db:"is_compatible" json:"is_compatible"`
	PriorityLevel        int  `db:"priority_level" json:"priority_level"`
}
