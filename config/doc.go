// Package config loads todo settings from TOML.
//
// The first file found wins, in this order: an explicit path, todo.toml in
// the working directory, then ~/.config/todo/todo.toml. With no file the
// defaults apply. TODO_* environment variables override single fields after
// the file is read.
//
//	[store]
//	backend = "file"        # memory | file | nats | mysql
//	list    = "groceries"   # stored under todos.groceries
//
//	[store.file]
//	dir = "~/.local/share/todo"
//
//	[store.nats]
//	url    = "nats://127.0.0.1:4222"
//	bucket = "todo"
//
//	[store.mysql]
//	dsn   = "todo:secret@tcp(127.0.0.1:3306)/todo"
//	table = "kv_entries"
//
//	[log]
//	level = "info"
//
//	[telemetry]
//	endpoint     = "localhost:4317"
//	protocol     = "grpc"
//	insecure     = true
//	service_name = "todo"
//	debug        = false
//
// Unknown keys are rejected. A file that carries a MySQL password must not
// be readable by group or others.
package config
