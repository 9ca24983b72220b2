package app

// Command はtodosyncのサブコマンド。
type Command string

const (
	// CommandServe はローカルAPIブリッジを起動する（既定）。
	CommandServe Command = "serve"
	// CommandMigrate はドキュメントストアを初期化する。
	// PostgreSQLではテーブルを作成し、MongoDBではインデックスを作成する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のブリッジの /health を確認する。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand はos.Args[1:]の先頭からサブコマンドを決める。
// 引数がなければserve。知らない名前もserveとして扱い、knownにfalseを返す。
func ParseCommand(args []string) (cmd Command, known bool) {
	if len(args) == 0 {
		return CommandServe, true
	}
	if c, ok := knownCommands[args[0]]; ok {
		return c, true
	}
	return CommandServe, false
}
