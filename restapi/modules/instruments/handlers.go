// Package instruments provides the instrument landing endpoints and the
// PID synchronization actions.
package instruments

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/model"
	"github.com/instrumentdb/pidinst-backend/pidinst"
)

// PIDResponse returns the result of PID operations
type PIDResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	PID     string `json:"pid,omitempty"`
}

// InstrumentListItem represents a simplified instrument for list view
type InstrumentListItem struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	PID  string `json:"pid,omitempty"`
}

// splitSuffix separates an optional ".format" suffix from the UUID text.
func splitSuffix(ref string) (base, suffix string) {
	if idx := strings.LastIndex(ref, "."); idx >= 0 {
		return ref[:idx], ref[idx+1:]
	}
	return ref, ""
}

// GetInstrument serves the instrument detail endpoint. A UUID has multiple
// textual representations with differences in dashes and letter case; all
// of them are accepted but permanently redirected to the canonical
// lowercase-hyphenated path. The representation is chosen by an explicit
// format suffix, or by Accept-header negotiation when there is none.
func GetInstrument(store pidinst.Store, projector pidinst.Projector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		base, suffix := splitSuffix(c.Params("ref"))

		parsed, err := uuid.Parse(base)
		if err != nil {
			return c.Status(fiber.StatusNotFound).SendString("Unknown instrument")
		}
		canonical := parsed.String()

		canonicalPath := "/instrument/" + canonical
		if suffix != "" {
			canonicalPath += "." + suffix
		}
		if c.Path() != canonicalPath {
			return c.Redirect(canonicalPath, fiber.StatusMovedPermanently)
		}

		inst, err := store.InstrumentByUUID(c.Context(), canonical)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).SendString("Unknown instrument")
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}

		switch suffix {
		case "json":
			return sendJSON(c, projector, inst)
		case "xml":
			return sendXML(c, projector, inst)
		case "html":
			return sendHTML(c, projector, inst)
		case "":
			// fall through to content negotiation below
		default:
			return c.Status(fiber.StatusNotFound).SendString("Unknown format")
		}

		// Content negotiation with the "Accept" header. A missing header
		// is not acceptable rather than "anything goes".
		if c.Get(fiber.HeaderAccept) == "" {
			return notAcceptable(c)
		}
		switch c.Accepts("application/json", "application/xml", "text/xml", "text/html") {
		case "application/json":
			return sendJSON(c, projector, inst)
		case "application/xml", "text/xml":
			return sendXML(c, projector, inst)
		case "text/html":
			return sendHTML(c, projector, inst)
		}
		return notAcceptable(c)
	}
}

func notAcceptable(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusNotAcceptable).SendString("Unsupported format requested")
}

func sendJSON(c *fiber.Ctx, projector pidinst.Projector, inst *model.Instrument) error {
	body, err := projector.Project(inst).EncodeJSON()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func sendXML(c *fiber.Ctx, projector pidinst.Projector, inst *model.Instrument) error {
	body, err := projector.Project(inst).EncodeXML()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXML)
	return c.Send(body)
}

func sendHTML(c *fiber.Ctx, projector pidinst.Projector, inst *model.Instrument) error {
	body, err := projector.BuildLandingPageData(inst, time.Now()).EncodeHTML()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(body)
}

// ListInstruments returns all instruments sorted by name.
func ListInstruments(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		instruments, err := database.ListInstruments(c.Context(), db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		items := make([]InstrumentListItem, 0, len(instruments))
		for _, inst := range instruments {
			items = append(items, InstrumentListItem{UUID: inst.UUID, Name: inst.Name, PID: inst.PID})
		}
		return c.JSON(items)
	}
}

// CreatePID registers (or refreshes) the PID of one instrument and then
// refreshes its one-hop neighbors that already hold a PID.
func CreatePID(sync *pidinst.Synchronizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parsed, err := uuid.Parse(c.Params("uuid"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(PIDResponse{Success: false, Message: "Unknown instrument"})
		}

		inst, err := sync.Store.InstrumentByUUID(c.Context(), parsed.String())
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(PIDResponse{Success: false, Message: "Unknown instrument"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(PIDResponse{Success: false, Message: err.Error()})
		}

		if err := sync.CreateOrUpdatePID(c.Context(), inst); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(PIDResponse{Success: false, Message: err.Error()})
		}
		if err := sync.UpdateRelatedPIDs(c.Context(), inst); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(PIDResponse{Success: false, Message: err.Error(), PID: inst.PID})
		}
		return c.JSON(PIDResponse{Success: true, PID: inst.PID})
	}
}

// SyncPIDs re-registers every instrument, reporting per-item failures
// without aborting the batch.
func SyncPIDs(sync *pidinst.Synchronizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := sync.SyncAll(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(result)
	}
}
