package database

import (
	"context"

	"github.com/google/uuid"
)

// Master-data lookups. Missing rows surface as pgx.ErrNoRows; callers decide
// whether that is a hard error or a soft "no default configured".

const getDefaultStatus = `
SELECT name, is_default, notify_customer, sort_order
FROM repair_statuses
WHERE is_default = true
LIMIT 1`

func (q *Queries) GetDefaultStatus(ctx context.Context) (RepairStatusConfig, error) {
	var s RepairStatusConfig
	err := q.db.QueryRow(ctx, getDefaultStatus).Scan(&s.Name, &s.IsDefault, &s.NotifyCustomer, &s.SortOrder)
	return s, err
}

const getStatusConfig = `
SELECT name, is_default, notify_customer, sort_order
FROM repair_statuses
WHERE name = $1`

func (q *Queries) GetStatusConfig(ctx context.Context, name string) (RepairStatusConfig, error) {
	var s RepairStatusConfig
	err := q.db.QueryRow(ctx, getStatusConfig, name).Scan(&s.Name, &s.IsDefault, &s.NotifyCustomer, &s.SortOrder)
	return s, err
}

const listStatusConfigs = `
SELECT name, is_default, notify_customer, sort_order
FROM repair_statuses
ORDER BY sort_order`

func (q *Queries) ListStatusConfigs(ctx context.Context) ([]RepairStatusConfig, error) {
	rows, err := q.db.Query(ctx, listStatusConfigs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []RepairStatusConfig
	for rows.Next() {
		var s RepairStatusConfig
		if err := rows.Scan(&s.Name, &s.IsDefault, &s.NotifyCustomer, &s.SortOrder); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

const getDefaultPriority = `
SELECT name, extra_charge, is_default
FROM repair_priorities
WHERE is_default = true
LIMIT 1`

func (q *Queries) GetDefaultPriority(ctx context.Context) (RepairPriority, error) {
	var p RepairPriority
	err := q.db.QueryRow(ctx, getDefaultPriority).Scan(&p.Name, &p.ExtraCharge, &p.IsDefault)
	return p, err
}

const getPriority = `
SELECT name, extra_charge, is_default
FROM repair_priorities
WHERE name = $1`

func (q *Queries) GetPriority(ctx context.Context, name string) (RepairPriority, error) {
	var p RepairPriority
	err := q.db.QueryRow(ctx, getPriority, name).Scan(&p.Name, &p.ExtraCharge, &p.IsDefault)
	return p, err
}

const listPriorities = `
SELECT name, extra_charge, is_default
FROM repair_priorities
ORDER BY extra_charge`

func (q *Queries) ListPriorities(ctx context.Context) ([]RepairPriority, error) {
	rows, err := q.db.Query(ctx, listPriorities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var priorities []RepairPriority
	for rows.Next() {
		var p RepairPriority
		if err := rows.Scan(&p.Name, &p.ExtraCharge, &p.IsDefault); err != nil {
			return nil, err
		}
		priorities = append(priorities, p)
	}
	return priorities, rows.Err()
}

const listBrands = `
SELECT name, is_active
FROM brands
WHERE is_active = true
ORDER BY name`

func (q *Queries) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := q.db.Query(ctx, listBrands)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.Name, &b.IsActive); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

const listDevicesByBrand = `
SELECT name, brand, is_active
FROM devices
WHERE brand = $1 AND is_active = true
ORDER BY name`

func (q *Queries) ListDevicesByBrand(ctx context.Context, brand string) ([]Device, error) {
	rows, err := q.db.Query(ctx, listDevicesByBrand, brand)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.Name, &d.Brand, &d.IsActive); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

const getDefect = `
SELECT id, title, device, brand, selling_price, estimated_minutes, is_active
FROM defects
WHERE id = $1`

func (q *Queries) GetDefect(ctx context.Context, id uuid.UUID) (Defect, error) {
	var d Defect
	err := q.db.QueryRow(ctx, getDefect, id).
		Scan(&d.ID, &d.Title, &d.Device, &d.Brand, &d.SellingPrice, &d.EstimatedMinutes, &d.IsActive)
	return d, err
}

const listDefectsByDevice = `
SELECT id, title, device, brand, selling_price, estimated_minutes, is_active
FROM defects
WHERE device = $1 AND is_active = true
ORDER BY title`

func (q *Queries) ListDefectsByDevice(ctx context.Context, device string) ([]Defect, error) {
	rows, err := q.db.Query(ctx, listDefectsByDevice, device)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defects []Defect
	for rows.Next() {
		var d Defect
		if err := rows.Scan(&d.ID, &d.Title, &d.Device, &d.Brand, &d.SellingPrice, &d.EstimatedMinutes, &d.IsActive); err != nil {
			return nil, err
		}
		defects = append(defects, d)
	}
	return defects, rows.Err()
}

const getChecklistTemplateByDevice = `
SELECT id, template_name, device, is_default
FROM checklist_templates
WHERE device = $1
ORDER BY is_default DESC
LIMIT 1`

// GetChecklistTemplateByDevice returns the template registered for the
// device, preferring the default when several exist.
func (q *Queries) GetChecklistTemplateByDevice(ctx context.Context, device string) (ChecklistTemplate, error) {
	var t ChecklistTemplate
	err := q.db.QueryRow(ctx, getChecklistTemplateByDevice, device).
		Scan(&t.ID, &t.TemplateName, &t.Device, &t.IsDefault)
	return t, err
}

const listChecklistTemplateItems = `
SELECT id, template_id, item_name, category, is_mandatory, sort_order
FROM checklist_template_items
WHERE template_id = $1
ORDER BY sort_order, id`

func (q *Queries) ListChecklistTemplateItems(ctx context.Context, templateID uuid.UUID) ([]ChecklistTemplateItem, error) {
	rows, err := q.db.Query(ctx, listChecklistTemplateItems, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ChecklistTemplateItem
	for rows.Next() {
		var it ChecklistTemplateItem
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.ItemName, &it.Category, &it.IsMandatory, &it.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
