package tests

const (

	// EventsDropTableV1 SQL statement for table drop
	EventsDropTableV1 string = `DROP TABLE IF EXISTS automation_events_v1;`
	// EventsTableV1 SQL statement for the event ledger table
	EventsTableV1 string = `CREATE TABLE IF NOT EXISTS automation_events_v1 (
		id varchar(36) primary key,
		event_type varchar(100) not null,
		source_entity varchar(100) not null,
		source_id varchar(100),
		subject_id varchar(100) not null,
		payload jsonb,
		ts timestamptz not null,
		status varchar(20) not null default 'pending',
		actions_triggered text[],
		action_results jsonb,
		error_message text
	);`

	// CooldownsDropTableV1 SQL statement for table drop
	CooldownsDropTableV1 string = `DROP TABLE IF EXISTS rule_cooldowns_v1;`
	// CooldownsTableV1 SQL statement for the cooldown index table
	CooldownsTableV1 string = `CREATE TABLE IF NOT EXISTS rule_cooldowns_v1 (
		rule_id integer not null,
		subject_id varchar(100) not null,
		last_triggered timestamptz not null,
		PRIMARY KEY(rule_id, subject_id)
	);`
)
