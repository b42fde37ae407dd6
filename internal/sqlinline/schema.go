package sqlinline

// Schema holds the bootstrap DDL, one statement per entry so each runs
// through the marker-checked runner individually.
var Schema = []string{
	`--sql 7c1f2d7a-9b0e-4f7b-8f7d-2f1a93c5de01
create table if not exists prompt_sets (
    id uuid primary key,
    filename text not null,
    sha256 text not null,
    path text not null,
    source text not null default 'uploaded',
    line_count int not null default 0,
    status text not null default 'pending'
        check (status in ('pending', 'in_use', 'consumed')),
    user_input text not null default '',
    uploaded_at timestamptz not null default now()
);
`,
	`--sql 3a8e51cc-64d2-4b0a-9c33-b80f41a6de02
create table if not exists jobs (
    id uuid primary key,
    prompt_set_id uuid not null references prompt_sets(id),
    status text not null default 'queued'
        check (status in ('queued', 'running', 'succeeded', 'failed', 'canceled')),
    total_prompts int not null default 0,
    image_count int not null default 0,
    error_message text not null default '',
    created_at timestamptz not null default now(),
    started_at timestamptz,
    finished_at timestamptz,
    zip_path text,
    zip_size_bytes bigint,
    zip_sha256 text,
    zip_built_at timestamptz
);
`,
	`--sql 5b7d9e10-2c4f-4f6a-b1d8-7e3c55a1de03
create table if not exists images (
    id uuid primary key,
    job_id uuid not null references jobs(id) on delete cascade,
    seq int not null,
    prompt_text text not null default '',
    path text not null,
    width int not null default 0,
    height int not null default 0,
    created_at timestamptz not null default now(),
    unique (job_id, seq)
);
`,
	`--sql 9f2a6c3e-1d5b-4e88-a4c2-60b7f2c8de04
create table if not exists job_failures (
    id uuid primary key,
    job_id uuid not null references jobs(id) on delete cascade,
    seq int not null,
    prompt_text text not null default '',
    reason text not null default '',
    created_at timestamptz not null default now()
);
`,
	`--sql 1e4b8a5d-7f29-4c61-93e0-4a8d16f7de05
create table if not exists app_config (
    key text primary key,
    value text not null default '',
    updated_at timestamptz not null default now()
);
`,
	`--sql 6d3f1b92-8a47-4d05-bc76-91e2a4c3de06
create index if not exists idx_images_job_seq on images (job_id, seq);
`,
	`--sql 2b9c7e41-5d68-4a3f-8e12-c7f0b5a9de07
create index if not exists idx_jobs_status_created on jobs (status, created_at);
`,
}

// QSeedConfigDefault inserts a default config row only when the key is
// absent, so operator edits survive restarts.
const QSeedConfigDefault = `--sql 8e5a2f7c-3b19-4d84-a6e5-1f9c40b2de08
insert into app_config (key, value)
values ($1, $2)
on conflict (key) do nothing;
`
