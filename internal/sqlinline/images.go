package sqlinline

// Insert and counter bump travel together so a crash can never leave the
// row and the count disagreeing.
const QInsertImage = `--sql a2d84f6c-5e17-4b93-80a5-36c9e1d0cc01
with ins as (
    insert into images (id, job_id, seq, prompt_text, path, width, height, created_at)
    values ($1, $2, $3, $4, $5, $6, $7, now())
    returning job_id
)
update jobs
set image_count = image_count + 1
where id in (select job_id from ins)
returning image_count;
`

const QSelectImageByID = `--sql c7f12b9e-8a54-4d06-93e2-b0d5a6f4cc02
select id, job_id, seq, prompt_text, path, width, height, created_at
from images
where id = $1;
`

const QSelectImagesByJob = `--sql e9a53d7f-2c80-4f61-85b4-d1f607e2cc03
select id, job_id, seq, prompt_text, path, width, height, created_at
from images
where job_id = $1
order by seq asc;
`

const QSelectAllImages = `--sql 4b6d8e0a-9f25-4c73-a1d8-70e3b5c9cc04
select id, job_id, seq, prompt_text, path, width, height, created_at
from images
order by job_id, seq asc;
`

const QSelectImagesPage = `--sql 0e3a5c7d-6b48-4f92-8017-c2d9f4a6cc05
select id, job_id, seq, prompt_text, path, width, height, created_at
from images
where ($1 = '' or job_id::text = $1)
order by created_at desc
offset $2 limit $3;
`

const QDeleteAllImages = `--sql 8c5f7a1b-3d60-4e84-92b5-f6a0d8e3cc06
with gone as (
    delete from images
    returning 1
)
update jobs set image_count = 0
where image_count <> 0;
`

const QDeleteImagesByJob = `--sql 6a9e1c4f-0d72-4b58-83a6-e5b2f7d0cc07
delete from images where job_id = $1;
`

const QCountAllImages = `--sql 2d7b9f3e-4a86-4c50-b1e7-09c4a6f8cc08
select count(*) from images;
`
