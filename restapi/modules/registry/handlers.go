// Package registry provides the write endpoints for the supporting
// entities of the instrument graph.
package registry

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/internal/services"
	"github.com/instrumentdb/pidinst-backend/model"
	"github.com/instrumentdb/pidinst-backend/util"
)

func isValidationError(err error) bool {
	return errors.Is(err, util.ErrInvalidStructure) ||
		errors.Is(err, util.ErrInvalidCheckDigit) ||
		errors.Is(err, util.ErrInvalidChecksum)
}

// PostOrganization creates an organization. The ROR identifier is
// normalized to its canonical form and rejected when the checksum fails.
func PostOrganization(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var org model.Organization
		if err := c.BodyParser(&org); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if org.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}
		if err := database.SaveOrganization(c.Context(), db, &org); err != nil {
			if isValidationError(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(org)
	}
}

// PostPerson creates a person. The ORCID identifier is normalized to its
// canonical form and rejected when the check digit fails.
func PostPerson(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var person model.Person
		if err := c.BodyParser(&person); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if person.FirstName == "" && person.LastName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a name is required"})
		}
		if err := database.SavePerson(c.Context(), db, &person); err != nil {
			if isValidationError(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(person)
	}
}

// PostInstrument creates an instrument. A fresh UUID is assigned when the
// request carries none.
func PostInstrument(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inst model.Instrument
		if err := c.BodyParser(&inst); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if inst.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}
		if err := database.CreateInstrument(c.Context(), db, &inst); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"uuid": inst.UUID})
	}
}

// SyncVocab refreshes the instrument type assignments of every model that
// carries a vocabulary concept.
func SyncVocab(syncer *services.VocabSyncer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := syncer.Sync(c.Context())
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(result)
	}
}
