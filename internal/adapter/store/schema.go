package store

const schema = `
CREATE TABLE IF NOT EXISTS audits (
    id UUID PRIMARY KEY,
    target_url TEXT NOT NULL,
    domain TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    progress INT NOT NULL DEFAULT 0,
    sensitive BOOLEAN NOT NULL DEFAULT FALSE,
    category TEXT NOT NULL DEFAULT 'unknown',
    error_message TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    started_at TIMESTAMPTZ,
    completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS crawled_urls (
    audit_id UUID REFERENCES audits(id) ON DELETE CASCADE,
    url TEXT NOT NULL,
    depth INT NOT NULL DEFAULT 0,
    html BOOLEAN NOT NULL DEFAULT FALSE,
    reachable BOOLEAN NOT NULL DEFAULT FALSE,
    discovered TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    position SERIAL,
    PRIMARY KEY (audit_id, url)
);

CREATE TABLE IF NOT EXISTS page_audits (
    id UUID PRIMARY KEY,
    audit_id UUID REFERENCES audits(id) ON DELETE CASCADE,
    entity TEXT NOT NULL,
    url TEXT NOT NULL,
    structure DOUBLE PRECISION NOT NULL DEFAULT 0,
    content DOUBLE PRECISION NOT NULL DEFAULT 0,
    authority DOUBLE PRECISION NOT NULL DEFAULT 0,
    schema_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    composite DOUBLE PRECISION NOT NULL DEFAULT 0,
    issues JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    position SERIAL
);

CREATE TABLE IF NOT EXISTS competitors (
    audit_id UUID REFERENCES audits(id) ON DELETE CASCADE,
    domain TEXT NOT NULL,
    url TEXT NOT NULL,
    rank INT NOT NULL,
    score DOUBLE PRECISION NOT NULL DEFAULT 0,
    PRIMARY KEY (audit_id, domain)
);

CREATE TABLE IF NOT EXISTS comparative_results (
    audit_id UUID REFERENCES audits(id) ON DELETE CASCADE,
    entity TEXT NOT NULL,
    is_target BOOLEAN NOT NULL DEFAULT FALSE,
    structure DOUBLE PRECISION NOT NULL DEFAULT 0,
    content DOUBLE PRECISION NOT NULL DEFAULT 0,
    authority DOUBLE PRECISION NOT NULL DEFAULT 0,
    schema_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    composite DOUBLE PRECISION NOT NULL DEFAULT 0,
    rank INT NOT NULL,
    strengths JSONB NOT NULL DEFAULT '[]',
    weaknesses JSONB NOT NULL DEFAULT '[]',
    PRIMARY KEY (audit_id, entity)
);

CREATE TABLE IF NOT EXISTS fix_plan_items (
    audit_id UUID REFERENCES audits(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    priority TEXT NOT NULL,
    category TEXT NOT NULL,
    url TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    impact TEXT NOT NULL DEFAULT '',
    position INT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
    audit_id UUID PRIMARY KEY REFERENCES audits(id) ON DELETE CASCADE,
    narrative TEXT NOT NULL,
    degraded BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS request_logs (
    id BIGSERIAL PRIMARY KEY,
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    status INT NOT NULL,
    details JSONB NOT NULL DEFAULT '{}',
    ip TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_page_audits_audit ON page_audits(audit_id);
CREATE INDEX IF NOT EXISTS idx_fix_plan_audit ON fix_plan_items(audit_id);
CREATE INDEX IF NOT EXISTS idx_audits_created ON audits(created_at);
`
