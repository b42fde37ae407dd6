package sqlinline

const QUpsertConfig = `--sql 9b4e6d2a-7c05-4f83-a1b9-58d0f3e6dd01
insert into app_config (key, value, updated_at)
values ($1, $2, now())
on conflict (key) do update
set value = excluded.value, updated_at = now();
`

const QSelectConfigValue = `--sql 5d8a0c3f-1e67-4b94-82d5-a7f4c9e0dd02
select value from app_config where key = $1;
`

const QSelectAllConfig = `--sql 3f7c9e5b-8d41-4a06-b3f8-60e2d5a1dd03
select key, value from app_config;
`

const QDeleteConfigKeys = `--sql b0e24a8c-6f93-4d57-91a0-c5d8e7f2dd04
delete from app_config where key = any($1);
`
