package store

import (
	"context"
	"fmt"
)

// DDL declares the raw store and the canonical schema. Page values are kept
// as text: filing dates arrive as M/D/YYYY strings and term columns hold
// interval strings, so typed columns would reject real portal output. The
// designated boolean columns and the injuries count are the exceptions.
const DDL = `
CREATE TABLE IF NOT EXISTS rawcases (
	case_id    text PRIMARY KEY,
	html       text NOT NULL,
	fetched_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cases (
	case_id          text PRIMARY KEY,
	title            text,
	court_system     text,
	type             text,
	filing_date      text,
	status           text,
	disposition      text,
	disposition_date text,
	violation_county text,
	violation_date   text
);

CREATE TABLE IF NOT EXISTS parties (
	case_id      text NOT NULL REFERENCES cases (case_id),
	name         text,
	type         text,
	bus_org_name text,
	agency_name  text,
	race         text,
	sex          text,
	height       text,
	weight       text,
	dob          text,
	address      text,
	city         text,
	state        text,
	zip          text
);

CREATE TABLE IF NOT EXISTS attorneys (
	case_id         text NOT NULL REFERENCES cases (case_id),
	name            text,
	type            text,
	appearance_date text,
	removal_date    text,
	practice_name   text,
	address         text,
	city            text,
	state           text,
	zip             text
);

CREATE TABLE IF NOT EXISTS events (
	case_id     text NOT NULL REFERENCES cases (case_id),
	type        text,
	date        text,
	time        text,
	result      text,
	result_date text
);

CREATE TABLE IF NOT EXISTS charges (
	case_id                     text NOT NULL REFERENCES cases (case_id),
	statute_code                text,
	description                 text,
	offense_date_from           text,
	offense_date_to             text,
	class                       text,
	amended_date                text,
	cjis_code                   text,
	probable_cause              boolean,
	victim_age                  text,
	speed_limit                 text,
	recorded_speed              text,
	location_stopped            text,
	accident_contribution       boolean,
	injuries                    integer,
	property_damage             boolean,
	seatbelts_used              boolean,
	mandatory_court_appearance  boolean,
	vehicle_tag                 text,
	state                       text,
	plea                        text,
	plea_date                   text,
	disposition                 text,
	disposition_date            text,
	jail_extreme_punishment     text,
	jail_term                   text,
	jail_suspended_term         text,
	jail_unsuspended_term       text,
	probation_term              text,
	probation_supervised_term   text,
	probation_unsupervised_term text,
	fine_amt                    text,
	fine_suspended_amt          text,
	fine_restitution_amt        text,
	fine_due                    text,
	fine_first_pmt_due          text,
	cws_hours                   text,
	cws_deadline                text,
	cws_location                text,
	cws_date                    text
);

CREATE TABLE IF NOT EXISTS documents (
	case_id     text NOT NULL REFERENCES cases (case_id),
	name        text,
	filing_date text
);

CREATE TABLE IF NOT EXISTS judgements (
	case_id     text NOT NULL REFERENCES cases (case_id),
	against     text,
	in_favor_of text,
	type        text,
	date        text,
	interest    text,
	amt         text
);

CREATE TABLE IF NOT EXISTS complaints (
	case_id     text NOT NULL REFERENCES cases (case_id),
	type        text,
	against     text,
	status      text,
	status_date text,
	filing_date text,
	amt         text
);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, DDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
