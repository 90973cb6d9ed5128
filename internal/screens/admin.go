package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
)

// === Accounts ===

var roleOptions = []Option{
	{Label: "Citizen", Value: string(domain.RoleCitizen)},
	{Label: "Staff", Value: string(domain.RoleStaff)},
	{Label: "Admin", Value: string(domain.RoleAdmin)},
}

func roleFlags(role string) (staff, superuser bool) {
	switch domain.Role(role) {
	case domain.RoleAdmin:
		return true, true
	case domain.RoleStaff:
		return true, false
	}
	return false, false
}

// Accounts lets an admin manage every user account
func Accounts(d Deps) *List[domain.User] {
	ctrl := listing.New(listing.Config[domain.User]{
		Name:    "accounts",
		Fetch:   d.Accounts.ListUsers,
		Compare: listing.ByText(func(u domain.User) string { return u.Username }),
		Search: func(u domain.User) []string {
			return []string{u.Username, u.Email, u.FirstName, u.LastName}
		},
		PageSize: d.pageSize(largePage),
		Logger:   d.logger(),
	})
	l := newList("Accounts", ctrl,
		[]Column{{Title: "Username", Width: 18}, {Title: "Name"}, {Title: "Email"}, {Title: "Role", Width: 8}, {Title: "Active", Width: 6}},
		func(u domain.User) []string {
			return []string{u.Username, u.FullName(), u.Email, string(u.Role()), yesNo(u.IsActive)}
		})
	l.searchable = true

	l.filters = append(l.filters, filterDef[domain.User]{
		group:   FilterGroup{Name: "role", Label: "Role"},
		choices: fixed("Citizen", "Staff", "Admin"),
		build: func(choice string, _ map[string]string) (listing.Predicate[domain.User], error) {
			p := listing.Equals("role", func(u domain.User) string { return string(u.Role()) }, choice)
			p.Label = "Role: " + choice
			return p, nil
		},
	})

	l.actions = []Action{
		{
			Key:   "n",
			Label: "new account",
			Form: func(context.Context, int64) (Form, error) {
				return Form{Title: "New account", Fields: []Field{
					{Key: "username", Label: "Username"},
					{Key: "email", Label: "Email"},
					{Key: "password", Label: "Password", Secret: true},
					{Key: "confirm", Label: "Confirm password", Secret: true},
					{Key: "first_name", Label: "First name"},
					{Key: "last_name", Label: "Last name"},
					{Key: "phone_number", Label: "Phone"},
					{Key: "role", Label: "Role", Value: string(domain.RoleCitizen), Options: roleOptions},
					{Key: "avatar", Label: "Avatar image path"},
				}}, nil
			},
			Run: func(ctx context.Context, _ int64, v map[string]string) (Result, error) {
				in := domain.AccountInput{
					Username:    text(v, "username"),
					Email:       text(v, "email"),
					Password:    v["password"],
					Confirm:     v["confirm"],
					FirstName:   text(v, "first_name"),
					LastName:    text(v, "last_name"),
					PhoneNumber: text(v, "phone_number"),
					AvatarPath:  text(v, "avatar"),
				}
				in.IsStaff, in.IsSuperuser = roleFlags(v["role"])
				err := ctrl.Mutate(ctx, listing.Mutation[domain.User]{
					Name:  "create account",
					Input: in,
					Do: func(ctx context.Context) error {
						_, err := d.Accounts.CreateUser(ctx, in)
						return err
					},
				})
				return Result{Notice: "Account " + in.Username + " created"}, err
			},
		},
		{
			Key:      "e",
			Label:    "edit",
			NeedsRow: true,
			Form: func(_ context.Context, id int64) (Form, error) {
				u, ok := ctrl.Find(id)
				if !ok {
					return Form{}, domain.ErrNotFound
				}
				return Form{Title: "Edit " + u.Username, Fields: []Field{
					{Key: "email", Label: "Email", Value: u.Email},
					{Key: "first_name", Label: "First name", Value: u.FirstName},
					{Key: "last_name", Label: "Last name", Value: u.LastName},
					{Key: "role", Label: "Role", Value: string(u.Role()), Options: roleOptions},
					{Key: "active", Label: "Active", Value: yesNo(u.IsActive), Options: yesNoOptions},
					{Key: "password", Label: "New password (optional)", Secret: true},
					{Key: "confirm", Label: "Confirm password", Secret: true},
				}}, nil
			},
			Run: func(ctx context.Context, id int64, v map[string]string) (Result, error) {
				in := domain.AccountUpdate{
					Email:     text(v, "email"),
					FirstName: text(v, "first_name"),
					LastName:  text(v, "last_name"),
					IsActive:  v["active"] == "Yes",
					Password:  v["password"],
					Confirm:   v["confirm"],
				}
				in.IsStaff, in.IsSuperuser = roleFlags(v["role"])
				err := ctrl.Mutate(ctx, listing.Mutation[domain.User]{
					Name:  "update account",
					Input: in,
					Do: func(ctx context.Context) error {
						_, err := d.Accounts.UpdateUser(ctx, id, in)
						return err
					},
				})
				return Result{Notice: "Account updated"}, err
			},
		},
		deleteAction(ctrl, "account", d.Accounts.DeleteUser),
	}
	return l
}

// deleteAction is the confirmed delete every admin list offers
func deleteAction[T domain.Item](ctrl *listing.Controller[T], noun string, del func(context.Context, int64) error) Action {
	return Action{
		Key:      "d",
		Label:    "delete",
		NeedsRow: true,
		Confirm: func(id int64) string {
			title := fmt.Sprintf("#%d", id)
			if it, ok := ctrl.Find(id); ok {
				title = it.GetTitle()
			}
			return fmt.Sprintf("Delete %s %q? This cannot be undone.", noun, title)
		},
		Run: func(ctx context.Context, id int64, _ map[string]string) (Result, error) {
			err := ctrl.Mutate(ctx, listing.Mutation[T]{
				Name: "delete " + noun,
				Do:   func(ctx context.Context) error { return del(ctx, id) },
			})
			return Result{Notice: strings.ToUpper(noun[:1]) + noun[1:] + " deleted"}, err
		},
	}
}

// === Vaccines ===

var statusOptions = func() []Option {
	opts := make([]Option, len(domain.VaccineStatuses))
	for i, s := range domain.VaccineStatuses {
		opts[i] = Option{Label: string(s), Value: string(s)}
	}
	return opts
}()

// Vaccines lets an admin manage the vaccine catalogue
func Vaccines(d Deps) *List[domain.Vaccine] {
	ctrl := listing.New(listing.Config[domain.Vaccine]{
		Name:     "vaccines",
		Fetch:    d.Vaccines.ListVaccines,
		Compare:  listing.ByText(func(v domain.Vaccine) string { return v.Name }),
		Search:   func(v domain.Vaccine) []string { return []string{v.Name, v.Manufacturer} },
		PageSize: d.pageSize(largePage),
		Logger:   d.logger(),
	})
	l := newList("Vaccines", ctrl,
		[]Column{{Title: "Name"}, {Title: "Type", Width: 16}, {Title: "Manufacturer", Width: 18}, {Title: "Doses", Width: 5}, {Title: "Status", Width: 16}},
		func(v domain.Vaccine) []string {
			return []string{v.Name, v.Type, v.Manufacturer, fmt.Sprint(v.DoseCount), string(v.Status)}
		})
	l.searchable = true

	vaccineType := func(v domain.Vaccine) string { return v.Type }
	l.choiceFilter("type", "Type", l.distinct(vaccineType), vaccineType)
	statuses := make([]string, len(domain.VaccineStatuses))
	for i, s := range domain.VaccineStatuses {
		statuses[i] = string(s)
	}
	l.choiceFilter("status", "Status", fixed(statuses...), func(v domain.Vaccine) string { return string(v.Status) })

	form := func(ctx context.Context, title string, v domain.Vaccine) (Form, error) {
		typeField := Field{Key: "type", Label: "Type", Value: v.Type}
		if types, err := d.Vaccines.ListVaccineTypes(ctx); err == nil {
			for _, t := range types {
				typeField.Options = append(typeField.Options, Option{Label: t.Name, Value: t.Name})
			}
		}
		status := string(v.Status)
		if status == "" {
			status = string(domain.VaccineActive)
		}
		return Form{Title: title, Fields: []Field{
			{Key: "name", Label: "Name", Value: v.Name},
			typeField,
			{Key: "manufacturer", Label: "Manufacturer", Value: v.Manufacturer},
			{Key: "dose_count", Label: "Dose count", Value: fmt.Sprint(v.DoseCount)},
			{Key: "dose_interval", Label: "Days between doses", Value: fmt.Sprint(v.DoseInterval)},
			{Key: "age_group", Label: "Age group", Value: v.AgeGroup},
			{Key: "description", Label: "Description", Value: v.Description},
			{Key: "status", Label: "Status", Value: status, Options: statusOptions},
		}}, nil
	}
	input := func(v map[string]string) (domain.VaccineInput, error) {
		doses, err := intField(v, "dose_count", "Dose count")
		if err != nil {
			return domain.VaccineInput{}, err
		}
		interval, err := intField(v, "dose_interval", "Days between doses")
		if err != nil {
			return domain.VaccineInput{}, err
		}
		return domain.VaccineInput{
			Name:         text(v, "name"),
			Type:         text(v, "type"),
			Manufacturer: text(v, "manufacturer"),
			DoseCount:    doses,
			DoseInterval: interval,
			AgeGroup:     text(v, "age_group"),
			Description:  text(v, "description"),
			Status:       domain.VaccineStatus(v["status"]),
		}, nil
	}

	l.actions = []Action{
		{
			Key:   "n",
			Label: "new vaccine",
			Form: func(ctx context.Context, _ int64) (Form, error) {
				return form(ctx, "New vaccine", domain.Vaccine{DoseCount: 1})
			},
			Run: func(ctx context.Context, _ int64, v map[string]string) (Result, error) {
				in, err := input(v)
				if err != nil {
					return Result{}, err
				}
				err = ctrl.Mutate(ctx, listing.Mutation[domain.Vaccine]{
					Name:  "create vaccine",
					Input: in,
					Do: func(ctx context.Context) error {
						_, err := d.Vaccines.CreateVaccine(ctx, in)
						return err
					},
				})
				return Result{Notice: "Vaccine added"}, err
			},
		},
		{
			Key:      "e",
			Label:    "edit",
			NeedsRow: true,
			Form: func(ctx context.Context, id int64) (Form, error) {
				v, ok := ctrl.Find(id)
				if !ok {
					return Form{}, domain.ErrNotFound
				}
				return form(ctx, "Edit "+v.Name, v)
			},
			Run: func(ctx context.Context, id int64, v map[string]string) (Result, error) {
				in, err := input(v)
				if err != nil {
					return Result{}, err
				}
				err = ctrl.Mutate(ctx, listing.Mutation[domain.Vaccine]{
					Name:  "update vaccine",
					Input: in,
					Do: func(ctx context.Context) error {
						_, err := d.Vaccines.UpdateVaccine(ctx, id, in)
						return err
					},
				})
				return Result{Notice: "Vaccine updated"}, err
			},
		},
		deleteAction(ctrl, "vaccine", d.Vaccines.DeleteVaccine),
	}
	return l
}

// VaccineTypes lets an admin manage vaccine categories
func VaccineTypes(d Deps) *List[domain.VaccineType] {
	ctrl := listing.New(listing.Config[domain.VaccineType]{
		Name:     "vaccine types",
		Fetch:    d.Vaccines.ListVaccineTypes,
		Compare:  listing.ByText(func(t domain.VaccineType) string { return t.Name }),
		Search:   func(t domain.VaccineType) []string { return []string{t.Name} },
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList("Vaccine types", ctrl,
		[]Column{{Title: "ID", Width: 6}, {Title: "Name"}},
		func(t domain.VaccineType) []string { return []string{itoa(t.ID), t.Name} })
	l.searchable = true

	save := func(ctx context.Context, id int64, v map[string]string) (Result, error) {
		in := domain.VaccineTypeInput{Name: text(v, "name")}
		err := ctrl.Mutate(ctx, listing.Mutation[domain.VaccineType]{
			Name:  "save vaccine type",
			Input: in,
			Do: func(ctx context.Context) error {
				var err error
				if id == 0 {
					_, err = d.Vaccines.CreateVaccineType(ctx, in)
				} else {
					_, err = d.Vaccines.UpdateVaccineType(ctx, id, in)
				}
				return err
			},
		})
		return Result{Notice: "Vaccine type saved"}, err
	}

	l.actions = []Action{
		{
			Key:   "n",
			Label: "new type",
			Form: func(context.Context, int64) (Form, error) {
				return Form{Title: "New vaccine type", Fields: []Field{{Key: "name", Label: "Name"}}}, nil
			},
			Run: func(ctx context.Context, _ int64, v map[string]string) (Result, error) {
				return save(ctx, 0, v)
			},
		},
		{
			Key:      "e",
			Label:    "rename",
			NeedsRow: true,
			Form: func(_ context.Context, id int64) (Form, error) {
				t, ok := ctrl.Find(id)
				if !ok {
					return Form{}, domain.ErrNotFound
				}
				return Form{Title: "Rename vaccine type", Fields: []Field{{Key: "name", Label: "Name", Value: t.Name}}}, nil
			},
			Run: save,
		},
		deleteAction(ctrl, "vaccine type", d.Vaccines.DeleteVaccineType),
	}
	return l
}

// Sites lets an admin manage injection sites
func Sites(d Deps) *List[domain.InjectionSite] {
	ctrl := listing.New(listing.Config[domain.InjectionSite]{
		Name:     "sites",
		Fetch:    d.Sites.ListSites,
		Compare:  listing.ByText(func(s domain.InjectionSite) string { return s.Name }),
		Search:   func(s domain.InjectionSite) []string { return []string{s.Name, s.Address} },
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList("Injection sites", ctrl,
		[]Column{{Title: "Name", Width: 24}, {Title: "Address"}, {Title: "Phone", Width: 14}},
		func(s domain.InjectionSite) []string { return []string{s.Name, s.Address, s.Phone} })
	l.searchable = true

	form := func(title string, s domain.InjectionSite) Form {
		return Form{Title: title, Fields: []Field{
			{Key: "name", Label: "Name", Value: s.Name},
			{Key: "address", Label: "Address", Value: s.Address},
			{Key: "phone", Label: "Phone", Value: s.Phone},
		}}
	}
	save := func(ctx context.Context, id int64, v map[string]string) (Result, error) {
		in := domain.SiteInput{Name: text(v, "name"), Address: text(v, "address"), Phone: text(v, "phone")}
		err := ctrl.Mutate(ctx, listing.Mutation[domain.InjectionSite]{
			Name:  "save site",
			Input: in,
			Do: func(ctx context.Context) error {
				var err error
				if id == 0 {
					_, err = d.Sites.CreateSite(ctx, in)
				} else {
					_, err = d.Sites.UpdateSite(ctx, id, in)
				}
				return err
			},
		})
		return Result{Notice: "Site saved"}, err
	}

	l.actions = []Action{
		{
			Key:   "n",
			Label: "new site",
			Form: func(context.Context, int64) (Form, error) {
				return form("New injection site", domain.InjectionSite{}), nil
			},
			Run: func(ctx context.Context, _ int64, v map[string]string) (Result, error) {
				return save(ctx, 0, v)
			},
		},
		{
			Key:      "e",
			Label:    "edit",
			NeedsRow: true,
			Form: func(_ context.Context, id int64) (Form, error) {
				s, ok := ctrl.Find(id)
				if !ok {
					return Form{}, domain.ErrNotFound
				}
				return form("Edit "+s.Name, s), nil
			},
			Run: save,
		},
		deleteAction(ctrl, "site", d.Sites.DeleteSite),
	}
	return l
}

// Schedules lets an admin plan vaccination sessions
func Schedules(d Deps) *List[domain.Schedule] {
	ctrl := listing.New(listing.Config[domain.Schedule]{
		Name: "schedules",
		Fetch: func(ctx context.Context) ([]domain.Schedule, error) {
			return d.Schedules.ListSchedules(ctx, false)
		},
		Compare:  listing.ByDate(func(s domain.Schedule) domain.Date { return s.Date }),
		Search:   scheduleSearch,
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList("Schedules", ctrl, scheduleColumns, scheduleCells)
	l.searchable = true

	periodFilter(l, d, func(s domain.Schedule) domain.Date { return s.Date })
	siteName := func(s domain.Schedule) string { return s.SiteName }
	l.choiceFilter("site", "Site", l.distinct(siteName), siteName)

	form := func(ctx context.Context, title string, s domain.Schedule) (Form, error) {
		vaccines, err := d.Vaccines.ListVaccines(ctx)
		if err != nil {
			return Form{}, err
		}
		sites, err := d.Sites.ListSites(ctx)
		if err != nil {
			return Form{}, err
		}
		vaccineField := Field{Key: "vaccine_id", Label: "Vaccine", Value: idValue(s.VaccineID)}
		for _, v := range vaccines {
			vaccineField.Options = append(vaccineField.Options, Option{Label: v.Name, Value: itoa(v.ID)})
		}
		siteField := Field{Key: "site_id", Label: "Site", Value: idValue(s.SiteID)}
		for _, st := range sites {
			siteField.Options = append(siteField.Options, Option{Label: st.Name, Value: itoa(st.ID)})
		}
		slots := ""
		if s.SlotCount > 0 {
			slots = fmt.Sprint(s.SlotCount)
		}
		return Form{Title: title, Fields: []Field{
			vaccineField,
			siteField,
			{Key: "date", Label: "Date (YYYY-MM-DD)", Value: s.Date.String()},
			{Key: "slot_count", Label: "Slots", Value: slots},
		}}, nil
	}
	save := func(ctx context.Context, id int64, v map[string]string) (Result, error) {
		vaccineID, err := idField(v, "vaccine_id", "Vaccine")
		if err != nil {
			return Result{}, err
		}
		siteID, err := idField(v, "site_id", "Site")
		if err != nil {
			return Result{}, err
		}
		slots, err := intField(v, "slot_count", "Slots")
		if err != nil {
			return Result{}, err
		}
		in := domain.ScheduleInput{VaccineID: vaccineID, SiteID: siteID, Date: text(v, "date"), SlotCount: slots}
		err = ctrl.Mutate(ctx, listing.Mutation[domain.Schedule]{
			Name:  "save schedule",
			Input: in,
			Do: func(ctx context.Context) error {
				var err error
				if id == 0 {
					_, err = d.Schedules.CreateSchedule(ctx, in)
				} else {
					_, err = d.Schedules.UpdateSchedule(ctx, id, in)
				}
				return err
			},
		})
		return Result{Notice: "Schedule saved"}, err
	}

	l.actions = []Action{
		{
			Key:   "n",
			Label: "new schedule",
			Form: func(ctx context.Context, _ int64) (Form, error) {
				return form(ctx, "New schedule", domain.Schedule{})
			},
			Run: func(ctx context.Context, _ int64, v map[string]string) (Result, error) {
				return save(ctx, 0, v)
			},
		},
		{
			Key:      "e",
			Label:    "edit",
			NeedsRow: true,
			Form: func(ctx context.Context, id int64) (Form, error) {
				s, ok := ctrl.Find(id)
				if !ok {
					return Form{}, domain.ErrNotFound
				}
				return form(ctx, "Edit schedule", s)
			},
			Run: save,
		},
		deleteAction(ctrl, "schedule", d.Schedules.DeleteSchedule),
	}
	return l
}

var scheduleColumns = []Column{
	{Title: "Date", Width: 10},
	{Title: "Vaccine"},
	{Title: "Type", Width: 14},
	{Title: "Site"},
	{Title: "Slots", Width: 5},
}

func scheduleCells(s domain.Schedule) []string {
	return []string{s.Date.String(), s.VaccineName, s.VaccineTypeName, s.SiteName, fmt.Sprint(s.SlotCount)}
}

func scheduleSearch(s domain.Schedule) []string {
	return []string{s.VaccineName, s.VaccineTypeName, s.SiteName}
}

func idValue(id int64) string {
	if id == 0 {
		return ""
	}
	return itoa(id)
}
