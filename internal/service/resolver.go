package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/serial"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
)

// ResolveRequest names a painting, variant and location by serial token plus
// optional descriptive data.
type ResolveRequest struct {
	PaintingCode string                   `json:"painting_code"`
	PaintingName string                   `json:"painting_name"`
	Variant      domain.VariantDescriptor `json:"variant"`
	LocationCode string                   `json:"location_code"`
	LocationName string                   `json:"location_name"`
	// IsHome only applies when the location is created.
	IsHome bool `json:"is_home"`
}

type Resolution struct {
	Painting        *domain.Painting         `json:"painting"`
	Variant         *domain.Variant          `json:"variant"`
	Location        *domain.Location         `json:"location"`
	PaintingCreated bool                     `json:"painting_created"`
	VariantCreated  bool                     `json:"variant_created"`
	LocationCreated bool                     `json:"location_created"`
	Warnings        []domain.ConflictWarning `json:"warnings,omitempty"`
}

// Resolver finds or creates the catalog entities a serial refers to.
// Resolving the same request twice yields the same entities and creates
// nothing the second time.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

func (rv *Resolver) Resolve(ctx context.Context, r *store.Repos, req ResolveRequest) (*Resolution, error) {
	res := &Resolution{}

	if err := rv.resolvePainting(ctx, r, req, res); err != nil {
		return nil, err
	}
	if err := rv.resolveVariant(ctx, r, req.Variant, res); err != nil {
		return nil, err
	}
	if err := rv.resolveLocation(ctx, r, req, res); err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		rv.logger.Warn("conflicting descriptive data", "entity", w.Entity, "key", w.Key,
			"field", w.Field, "stored", w.Stored, "supplied", w.Supplied)
	}
	return res, nil
}

// ResolveSerial resolves the entities named by the tokens of a decoded
// serial. Names are optional fallbacks used only on creation or to report
// conflicts.
func (rv *Resolver) ResolveSerial(ctx context.Context, r *store.Repos, c serial.Components, paintingName, locationName string) (*Resolution, error) {
	return rv.Resolve(ctx, r, ResolveRequest{
		PaintingCode: c.Painting,
		PaintingName: paintingName,
		Variant:      domain.VariantDescriptor{Code: c.Variant},
		LocationCode: c.Location,
		LocationName: locationName,
	})
}

// SetHome changes the home status of a location. It is the only way
// is_home changes after creation.
func (rv *Resolver) SetHome(ctx context.Context, r *store.Repos, locationID int64, isHome bool) (*domain.Location, error) {
	if err := r.Locations.SetHome(ctx, locationID, isHome); err != nil {
		return nil, err
	}
	rv.logger.Info("location home status changed", "location_id", locationID, "is_home", isHome)
	return r.Locations.GetByID(ctx, locationID)
}

func (rv *Resolver) resolvePainting(ctx context.Context, r *store.Repos, req ResolveRequest, res *Resolution) error {
	if !serial.IsToken(req.PaintingCode) {
		return domain.Invalid("painting_code", "%q is not a valid serial token", req.PaintingCode)
	}

	p, err := r.Paintings.GetByCode(ctx, req.PaintingCode)
	if err != nil {
		return err
	}
	if p != nil {
		if req.PaintingName != "" && req.PaintingName != p.Name {
			res.Warnings = append(res.Warnings, domain.ConflictWarning{
				Entity: "painting", Key: p.Code, Field: "name", Stored: p.Name, Supplied: req.PaintingName,
			})
		}
		res.Painting = p
		return nil
	}

	name := req.PaintingName
	if name == "" {
		name = req.PaintingCode
	}
	p, err = r.Paintings.Create(ctx, req.PaintingCode, name)
	if err != nil {
		return err
	}
	rv.logger.Info("painting created", "painting_id", p.ID, "code", p.Code)
	res.Painting = p
	res.PaintingCreated = true
	return nil
}

func (rv *Resolver) resolveVariant(ctx context.Context, r *store.Repos, d domain.VariantDescriptor, res *Resolution) error {
	if d.Code == "" {
		if !d.HasDetails() {
			return domain.Invalid("variant", "a code or descriptor is required")
		}
		d.Code = serial.VariantCode(d.Category, d.Size, d.Stretch, d.Framing)
	}
	if !serial.IsToken(d.Code) {
		return domain.Invalid("variant_code", "%q is not a valid serial token", d.Code)
	}

	paintingID := res.Painting.ID
	v, err := r.Variants.GetByCode(ctx, paintingID, d.Code)
	if err != nil {
		return err
	}
	if v != nil {
		if d.HasDetails() && !d.Matches(v) {
			res.Warnings = append(res.Warnings, domain.ConflictWarning{
				Entity: "variant", Key: v.Code, Field: "descriptor",
				Stored: describeVariant(v.Category, v.Size, v.Stretch, v.Framing),
				Supplied: describeVariant(d.Category, d.Size, d.Stretch, d.Framing),
			})
		}
		res.Variant = v
		return nil
	}

	if !d.HasDetails() {
		d.Size = d.Code
	}
	existing, err := r.Variants.GetByDescriptor(ctx, paintingID, d)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.Invalid("variant_code", "painting %s already has this variant under code %q", res.Painting.Code, existing.Code)
	}

	v, err = r.Variants.Create(ctx, paintingID, d)
	if err != nil {
		return err
	}
	rv.logger.Info("variant created", "variant_id", v.ID, "painting_id", paintingID, "code", v.Code)
	res.Variant = v
	res.VariantCreated = true
	return nil
}

func (rv *Resolver) resolveLocation(ctx context.Context, r *store.Repos, req ResolveRequest, res *Resolution) error {
	if !serial.IsToken(req.LocationCode) {
		return domain.Invalid("location_code", "%q is not a valid serial token", req.LocationCode)
	}

	l, err := r.Locations.GetByCode(ctx, req.LocationCode)
	if err != nil {
		return err
	}
	if l != nil {
		if req.LocationName != "" && req.LocationName != l.Name {
			res.Warnings = append(res.Warnings, domain.ConflictWarning{
				Entity: "location", Key: l.Code, Field: "name", Stored: l.Name, Supplied: req.LocationName,
			})
		}
		res.Location = l
		return nil
	}

	name := req.LocationName
	if name == "" {
		name = req.LocationCode
	}
	other, err := r.Locations.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if other != nil {
		return domain.Invalid("location_name", "%q already belongs to location %s", name, other.Code)
	}

	l, err = r.Locations.Create(ctx, req.LocationCode, name, req.IsHome)
	if err != nil {
		return err
	}
	rv.logger.Info("location created", "location_id", l.ID, "code", l.Code, "is_home", l.IsHome)
	res.Location = l
	res.LocationCreated = true
	return nil
}

func describeVariant(category, size string, stretch, framing bool) string {
	return fmt.Sprintf("category=%s size=%s stretch=%t framing=%t", category, size, stretch, framing)
}
