package domain

// Request bodies for mutations. The validate tags are checked on the client
// before anything is sent; see listing.Validate.

// AccountInput creates an account (self registration or admin)
type AccountInput struct {
	Username    string `json:"username" validate:"required,min=3,max=150"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Confirm     string `json:"-" validate:"eqfield=Password"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	CitizenID   string `json:"citizen_id,omitempty" validate:"omitempty,numeric"`
	BirthDate   string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender,omitempty" validate:"omitempty,oneof=M F O"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,numeric,min=9,max=15"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	AvatarPath  string `json:"-" validate:"omitempty,file"`
}

// AccountUpdate is an admin edit of an existing account
type AccountUpdate struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    bool   `json:"is_active"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
	Confirm     string `json:"-" validate:"eqfield=Password"`
}

// ProfileInput is a user's edit of their own profile
type ProfileInput struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,numeric,min=9,max=15"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
	Confirm     string `json:"-" validate:"eqfield=Password"`
	AvatarPath  string `json:"-" validate:"omitempty,file"`
}

// VaccineInput creates or edits a vaccine
type VaccineInput struct {
	Name         string        `json:"name" validate:"required,max=255"`
	Type         string        `json:"type,omitempty"`
	Manufacturer string        `json:"manufacturer,omitempty"`
	DoseCount    int           `json:"dose_count,omitempty" validate:"gte=0"`
	DoseInterval int           `json:"dose_interval,omitempty" validate:"gte=0"`
	AgeGroup     string        `json:"age_group,omitempty"`
	Description  string        `json:"description,omitempty"`
	Status       VaccineStatus `json:"status,omitempty"`
}

// VaccineTypeInput creates or renames a vaccine type
type VaccineTypeInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// SiteInput creates or edits an injection site
type SiteInput struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

// ScheduleInput creates or replaces a schedule
type ScheduleInput struct {
	VaccineID int64  `json:"vaccine_id" validate:"required,gt=0"`
	SiteID    int64  `json:"site_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	SlotCount int    `json:"slot_count" validate:"required,gt=0"`
}

// AppointmentStatus is the staff-controlled state of an appointment.
// An appointment cannot be inoculated before it is confirmed.
type AppointmentStatus struct {
	IsConfirmed  bool `json:"is_confirmed"`
	IsInoculated bool `json:"is_inoculated"`
}

// HealthNoteInput edits the post-injection note on a record
type HealthNoteInput struct {
	HealthNote string `json:"health_note" validate:"max=2000"`
}
