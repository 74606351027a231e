package i18n

// PtBRMessages Portuguese (Brazil) overlay
var PtBRMessages = map[string]string{
	"chat.default_title": "Novo Chat",
	"chat.welcome":       "✨ Novo chat iniciado. Como posso ajudar?",
	"chat.you":           "Você",

	"sidebar.conversations": "Conversas",
	"sidebar.keys":          "Suas Keys",
	"input.placeholder":     "Digite uma mensagem ou /help",
	"help.shortcuts":        "enter envia • ctrl+n novo • ctrl+t tema • tab lista • ctrl+c sair",

	"status.ready":    "Pronto",
	"status.thinking": "pensando",
	"status.tokens":   "~%d tokens",
	"status.theme":    "tema %s",

	"warn.no_credentials": "Configure ao menos uma API Key: /key <provedor> <token>",
	"warn.busy":           "Ainda respondendo a mensagem anterior.",
	"image.pending":       "🎨 Chamando a IA de imagens...\nGerando: %s",
	"image.ready":         "🖼️ Aqui está:",
	"image.failed":        "❌ Não foi possível gerar imagem.",
	"error.reply":         "❌ Erro: %s",

	"confirm.delete": "Tem certeza que deseja excluir a conversa %q? (s/n)",
	"confirm.clear":  "Excluir TODAS as conversas? (s/n)",
	"confirm.cancel": "Cancelado.",

	"cmd.help": `Comandos:
  /new                 nova conversa
  /list                listar conversas (mais recentes primeiro)
  /open <n>            abrir a conversa n
  /rename <título>     renomear a conversa ativa
  /delete [n]          excluir a conversa n (padrão: ativa)
  /clear               excluir todas as conversas
  /keys                mostrar as keys configuradas
  /key <slot> <token>  definir uma key (openai|gemini|claude)
  /theme               alternar tema escuro/claro
  /help                mostrar esta ajuda
  /quit                sair`,
	"cmd.unknown":       "Comando desconhecido: /%s (tente /help)",
	"cmd.usage.open":    "Uso: /open <n>",
	"cmd.usage.rename":  "Uso: /rename <título>",
	"cmd.usage.key":     "Uso: /key <openai|gemini|claude> <token>",
	"cmd.bad_index":     "Conversa %s não existe.",
	"cmd.created":       "Nova conversa iniciada.",
	"cmd.opened":        "Conversa %q aberta.",
	"cmd.renamed":       "Renomeada para %q.",
	"cmd.deleted":       "Conversa excluída.",
	"cmd.cleared":       "Todas as conversas foram excluídas.",
	"cmd.key_saved":     "Key salva para %s.",
	"cmd.key_cleared":   "Key removida para %s.",
	"cmd.theme_changed": "Tema: %s",
	"cmd.keys_header":   "Keys dos provedores:",

	"repl.banner": "LenAI (modo texto). Digite /help para comandos, /quit para sair.",
	"repl.bye":    "Tchau.",
}
