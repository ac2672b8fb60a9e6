package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandRun はスキーマを初期化してシードデータを生成・投入することを示す。
	CommandRun Command = "run"
	// CommandMigrate はデータベースマイグレーションのみを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandReset はテーブルを削除して作り直すことを示す。
	CommandReset Command = "reset"
	// CommandHealthcheck は実行中のステータスサーバーにヘルスチェックを行うことを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandRunを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandRun
	}

	switch args[0] {
	case "run":
		return CommandRun
	case "migrate":
		return CommandMigrate
	case "reset":
		return CommandReset
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandRun
	}
}
