package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"heating_control/internal/models"
)

type ZoneSQLite struct {
	db *sql.DB
}

func NewZoneSQLite(db *sql.DB) *ZoneSQLite { return &ZoneSQLite{db: db} }

var _ ZoneRepo = (*ZoneSQLite)(nil)

var ErrNotFound = errors.New("not found")

const (
	selectZoneSQL = `SELECT id, name, thermostats, temp_sensors, humidity_sensors, schedule_id, enabled FROM zones`

	insertZoneSQL = `
		INSERT INTO zones (id, name, thermostats, temp_sensors, humidity_sensors, schedule_id, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	updateZoneSQL = `
		UPDATE zones SET name=?, thermostats=?, temp_sensors=?, humidity_sensors=?, schedule_id=?, enabled=?
		WHERE id=?
	`
)

// marshalIDs stores an id slice as a JSON string.
func marshalIDs(ids []string) (string, error) {
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalIDs(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ZoneSQLite) List(ctx context.Context) ([]models.Zone, error) {
	rows, err := r.db.QueryContext(ctx, selectZoneSQL+` ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Zone, 0, 8)
	for rows.Next() {
		z, err := scanZone(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (r *ZoneSQLite) Get(ctx context.Context, id string) (*models.Zone, error) {
	row := r.db.QueryRowContext(ctx, selectZoneSQL+` WHERE id=?`, id)
	z, err := scanZone(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("zone %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &z, nil
}

func (r *ZoneSQLite) Create(ctx context.Context, z models.Zone) error {
	thermostats, tempSensors, humSensors, err := marshalZoneMembers(z)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertZoneSQL,
		z.ID, z.Name, thermostats, tempSensors, humSensors, z.ScheduleID, z.Enabled)
	if err != nil {
		return fmt.Errorf("insert zone %q: %w", z.ID, err)
	}
	return nil
}

func (r *ZoneSQLite) Update(ctx context.Context, z models.Zone) error {
	thermostats, tempSensors, humSensors, err := marshalZoneMembers(z)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateZoneSQL,
		z.Name, thermostats, tempSensors, humSensors, z.ScheduleID, z.Enabled, z.ID)
	if err != nil {
		return fmt.Errorf("update zone %q: %w", z.ID, err)
	}
	return requireRowAffected(res, z.ID)
}

func (r *ZoneSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete zone %q: %w", id, err)
	}
	return requireRowAffected(res, id)
}

func (r *ZoneSQLite) AssignSchedule(ctx context.Context, zoneID, scheduleID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE zones SET schedule_id=? WHERE id=?`, scheduleID, zoneID)
	if err != nil {
		return fmt.Errorf("assign schedule to zone %q: %w", zoneID, err)
	}
	return requireRowAffected(res, zoneID)
}

func marshalZoneMembers(z models.Zone) (string, string, string, error) {
	thermostats, err := marshalIDs(z.Thermostats)
	if err != nil {
		return "", "", "", err
	}
	tempSensors, err := marshalIDs(z.TempSensors)
	if err != nil {
		return "", "", "", err
	}
	humSensors, err := marshalIDs(z.HumiditySensors)
	if err != nil {
		return "", "", "", err
	}
	return thermostats, tempSensors, humSensors, nil
}

func scanZone(scan func(...any) error) (models.Zone, error) {
	var (
		z                                   models.Zone
		thermostats, tempSensors, humiditys string
		scheduleID                          sql.NullString
	)
	if err := scan(&z.ID, &z.Name, &thermostats, &tempSensors, &humiditys, &scheduleID, &z.Enabled); err != nil {
		return models.Zone{}, err
	}
	var err error
	if z.Thermostats, err = unmarshalIDs(thermostats); err != nil {
		return models.Zone{}, err
	}
	if z.TempSensors, err = unmarshalIDs(tempSensors); err != nil {
		return models.Zone{}, err
	}
	if z.HumiditySensors, err = unmarshalIDs(humiditys); err != nil {
		return models.Zone{}, err
	}
	if scheduleID.Valid {
		z.ScheduleID = scheduleID.String
	}
	return z, nil
}

func requireRowAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return nil
}
