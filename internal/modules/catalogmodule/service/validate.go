package service

import (
	"net/mail"
	"strings"

	"github.com/mantonx/reelbase/internal/database"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
)

func required(op, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return catalogerrors.ValidationError(op, "%s is required", field).WithField(field)
	}
	return nil
}

func positive(op, field string, v *int) error {
	if v != nil && *v <= 0 {
		return catalogerrors.ValidationError(op, "%s must be positive", field).WithField(field)
	}
	return nil
}

func GenreHooks() Hooks[database.Genre] {
	return Hooks[database.Genre]{
		Validate: func(g *database.Genre) error {
			g.Name = strings.TrimSpace(g.Name)
			return required("create_genre", "name", g.Name)
		},
		ID: func(g *database.Genre) string { return g.ID },
	}
}

func CountryHooks() Hooks[database.Country] {
	return Hooks[database.Country]{
		Validate: func(c *database.Country) error {
			const op = "create_country"
			c.Name = strings.TrimSpace(c.Name)
			if err := required(op, "name", c.Name); err != nil {
				return err
			}
			if c.Code != nil {
				code := strings.ToUpper(strings.TrimSpace(*c.Code))
				if len(code) != 2 {
					return catalogerrors.ValidationError(op, "country code %q is not two letters", *c.Code).WithField("code")
				}
				c.Code = &code
			}
			return nil
		},
		ID: func(c *database.Country) string { return c.ID },
	}
}

func CeremonyHooks() Hooks[database.Ceremony] {
	return Hooks[database.Ceremony]{
		Validate: func(c *database.Ceremony) error {
			const op = "create_ceremony"
			c.Name = strings.TrimSpace(c.Name)
			if err := required(op, "name", c.Name); err != nil {
				return err
			}
			return positive(op, "year", c.Year)
		},
		ID: func(c *database.Ceremony) string { return c.ID },
	}
}

func UserHooks() Hooks[database.User] {
	return Hooks[database.User]{
		Validate: func(u *database.User) error {
			const op = "create_user"
			u.Username = strings.TrimSpace(u.Username)
			if err := required(op, "username", u.Username); err != nil {
				return err
			}
			addr, err := mail.ParseAddress(u.Email)
			if err != nil {
				return catalogerrors.ValidationError(op, "email %q is invalid", u.Email).WithField("email")
			}
			u.Email = strings.ToLower(addr.Address)
			return nil
		},
		ID: func(u *database.User) string { return u.ID },
	}
}

func PersonHooks() Hooks[database.Person] {
	return Hooks[database.Person]{
		Validate: func(p *database.Person) error {
			const op = "create_person"
			p.Name = strings.TrimSpace(p.Name)
			if err := required(op, "name", p.Name); err != nil {
				return err
			}
			if p.BirthDate != nil && p.DeathDate != nil && p.DeathDate.Before(*p.BirthDate) {
				return catalogerrors.ValidationError(op, "death date precedes birth date").WithField("death_date")
			}
			return nil
		},
		ID: func(p *database.Person) string { return p.ID },
	}
}
