package migration

// getAllMigrations returns every known migration
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_core_tables",
			Up: `
				-- Citizen-submitted issue reports
				CREATE TABLE reports (
					id BIGSERIAL PRIMARY KEY,
					title VARCHAR(255) NOT NULL,
					description TEXT NOT NULL,
					location VARCHAR(255) NOT NULL,
					country VARCHAR(100),
					category VARCHAR(100) NOT NULL DEFAULT 'Public Issue',
					image_url VARCHAR(500),
					status VARCHAR(50) NOT NULL DEFAULT 'pending',
					progress INTEGER NOT NULL DEFAULT 0,
					assigned_contractor VARCHAR(100),
					cost_estimate_min INTEGER,
					cost_estimate_max INTEGER,
					currency VARCHAR(3),
					created_at TIMESTAMP DEFAULT NOW(),
					updated_at TIMESTAMP DEFAULT NOW()
				);

				-- One tender opened per report
				CREATE TABLE tenders (
					id BIGSERIAL PRIMARY KEY,
					report_id BIGINT REFERENCES reports(id) ON DELETE CASCADE,
					budget VARCHAR(100) NOT NULL DEFAULT 'To be determined',
					deadline TIMESTAMP NOT NULL,
					urgent BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP DEFAULT NOW()
				);

				-- Contractor bids
				CREATE TABLE bids (
					id BIGSERIAL PRIMARY KEY,
					report_id BIGINT REFERENCES reports(id) ON DELETE CASCADE,
					contractor VARCHAR(100) NOT NULL,
					amount NUMERIC(12,2) NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					progress INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMP DEFAULT NOW()
				);

				CREATE INDEX idx_reports_status ON reports(status);
				CREATE INDEX idx_tenders_report_id ON tenders(report_id);
				CREATE INDEX idx_bids_report_id ON bids(report_id);
				CREATE INDEX idx_bids_contractor ON bids(contractor);
			`,
			Down: `
				DROP TABLE IF EXISTS bids;
				DROP TABLE IF EXISTS tenders;
				DROP TABLE IF EXISTS reports;
			`,
		},
		{
			Version: 2,
			Name:    "create_ratings_and_history",
			Up: `
				-- Citizen ratings on completed repairs
				CREATE TABLE ratings (
					id BIGSERIAL PRIMARY KEY,
					report_id BIGINT REFERENCES reports(id) ON DELETE CASCADE,
					user_id VARCHAR(100) NOT NULL,
					rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
					comment TEXT,
					created_at TIMESTAMP DEFAULT NOW()
				);

				-- Status timeline shown on the issue page
				CREATE TABLE report_status_history (
					id BIGSERIAL PRIMARY KEY,
					report_id BIGINT REFERENCES reports(id) ON DELETE CASCADE,
					status VARCHAR(50) NOT NULL,
					progress INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMP DEFAULT NOW()
				);

				CREATE INDEX idx_ratings_report_id ON ratings(report_id);
				CREATE INDEX idx_history_report_id ON report_status_history(report_id);
			`,
			Down: `
				DROP TABLE IF EXISTS report_status_history;
				DROP TABLE IF EXISTS ratings;
			`,
		},
	}
}
