package sqlinline

const jobColumns = `id, prompt_set_id, status, total_prompts, image_count, error_message,
       created_at, started_at, finished_at, zip_path, zip_size_bytes, zip_sha256, zip_built_at`

const QInsertJob = `--sql 4d8f2a6b-7c13-4e95-b0d6-82a5f1c9bb01
insert into jobs (id, prompt_set_id, status, total_prompts, created_at)
values ($1, $2, 'queued', $3, now());
`

const QSelectJobByID = `--sql 7a3e9c5d-0b62-4f18-a794-c1d80e6fbb02
select ` + jobColumns + `
from jobs
where id = $1;
`

const QSelectJobs = `--sql 2f6b8d1a-5e49-4c07-938b-a7e043d2bb03
select ` + jobColumns + `
from jobs
order by created_at desc
limit $1;
`

// Atomic FIFO claim: the CTE locks the oldest queued row and flips it to
// running in one round trip, which is what keeps "at most one running job"
// true even if a second worker were ever pointed at the same database.
const QClaimNextQueuedJob = `--sql 9c1d4f7e-3a85-4b26-80f1-6d2e95c0bb04
with next_job as (
    select id
    from jobs
    where status = 'queued'
      and not exists (select 1 from jobs r where r.status = 'running')
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update jobs
    set status = 'running', started_at = now()
    where id in (select id from next_job)
    returning ` + jobColumns + `
)
select * from claimed;
`

// Terminal states are frozen by the status guard in the where clause.
const QUpdateJobStatus = `--sql e5b07a2c-8f64-4d31-95ca-40b1d6e8bb05
update jobs
set status = $2,
    error_message = coalesce(nullif($3, ''), error_message),
    finished_at = coalesce($4, finished_at)
where id = $1
  and status not in ('succeeded', 'failed', 'canceled');
`

const QJobHasActiveForPromptSet = `--sql 0a4c6e8f-1b37-4952-86de-73f5a2c1bb06
select exists (
    select 1 from jobs
    where prompt_set_id = $1
      and status in ('queued', 'running')
);
`

const QLatestSucceededJob = `--sql 6e2a8c4d-9f05-4b73-a186-52d0e7f3bb07
select ` + jobColumns + `
from jobs
where status = 'succeeded'
order by finished_at desc
limit 1;
`

const QSetJobZip = `--sql 3b7f1e9a-4c58-4d06-b2a9-85e6d0c4bb08
update jobs
set zip_path = $2, zip_size_bytes = $3, zip_sha256 = $4, zip_built_at = $5
where id = $1;
`

const QClearJobZips = `--sql 8d5a3c7e-6b92-4f40-a0d3-17c4e9f6bb09
update jobs
set zip_path = null, zip_size_bytes = null, zip_sha256 = null, zip_built_at = null
where zip_path is not null;
`

const QDeleteJob = `--sql 5f9b2d4a-0e76-4c28-b5f1-94a3c8d0bb10
delete from jobs where id = $1;
`

const QInsertJobFailure = `--sql 1c8e4a6d-7f30-4b95-82c6-d9f5e2a7bb11
insert into job_failures (id, job_id, seq, prompt_text, reason, created_at)
values ($1, $2, $3, $4, $5, now());
`

const QSelectJobFailures = `--sql 7d2f5b8c-3a61-4e07-9148-e0c6a4f9bb12
select id, job_id, seq, prompt_text, reason, created_at
from job_failures
where job_id = $1
order by seq asc;
`
