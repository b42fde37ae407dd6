package sqlinline

const QInsertPromptSet = `--sql b4c61d2e-9a05-4f38-8b71-3e5d92f4aa01
insert into prompt_sets (id, filename, sha256, path, source, line_count, status, user_input, uploaded_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

const QSelectPromptSetByID = `--sql d7e82f3a-1c46-4b59-a083-6f2b54c8aa02
select id, filename, sha256, path, source, line_count, status, user_input, uploaded_at
from prompt_sets
where id = $1;
`

const QSelectPromptSets = `--sql f1a93b5c-8d27-4e60-b2a4-90c7e1d6aa03
select id, filename, sha256, path, source, line_count, status, user_input, uploaded_at
from prompt_sets
order by uploaded_at desc;
`

const QUpdatePromptSetStatus = `--sql a6b25c8d-4e93-4a71-8c50-d2f817e9aa04
update prompt_sets
set status = $2
where id = $1;
`

// The status guard keeps a concurrent worker promotion from losing its
// prompt file under a racing delete.
const QDeletePromptSet = `--sql e3f16a7b-5d09-4c34-b6e8-17a4c2d9aa15
delete from prompt_sets
where id = $1
  and status = 'pending';
`

// Oldest pending set first: pending rows are exactly the ones no job has
// picked up yet, so this doubles as the auto-process feed query.
const QSelectNextPendingPromptSet = `--sql c9d04e6f-2b58-4c82-91a7-5e3f60b1aa05
select id, filename, sha256, path, source, line_count, status, user_input, uploaded_at
from prompt_sets
where status = 'pending'
order by uploaded_at asc
limit 1;
`
