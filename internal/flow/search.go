package flow

import (
	"TeleVault/internal/i18n"
	"TeleVault/internal/service"
	"TeleVault/internal/session"
	"TeleVault/internal/transport"
	"TeleVault/model"
	"TeleVault/utils"
	"context"
	"strings"
)

const searchFlowName = "search"

// Search modes.
const (
	SearchByName     = "name"
	SearchByTag      = "tag"
	SearchByCategory = "category"
	SearchByFormat   = "format"
)

const searchResultLimit = 10

// SearchState tracks which mode was picked while waiting for the query.
type SearchState struct {
	Mode string `json:"mode"`
}

// SearchFlow drives the search conversation.
type SearchFlow struct {
	Sessions  session.Store
	Transport transport.Transport
}

// Active reports whether the user has a search in progress.
func (f *SearchFlow) Active(ctx context.Context, user *model.User) bool {
	var st SearchState
	ok, err := f.Sessions.Get(ctx, user.TelegramID, searchFlowName, &st)
	return err == nil && ok
}

// Start offers the search modes.
func (f *SearchFlow) Start(ctx context.Context, user *model.User) error {
	lang := user.LanguageCode
	st := SearchState{}
	if err := f.Sessions.Set(ctx, user.TelegramID, searchFlowName, st); err != nil {
		return err
	}
	kb := transport.Keyboard{
		{
			{Text: i18n.T(lang, "search_by_name"), Data: "search_name"},
			{Text: i18n.T(lang, "search_by_tag"), Data: "search_tag"},
		},
		{
			{Text: i18n.T(lang, "search_by_category"), Data: "search_category"},
			{Text: i18n.T(lang, "search_by_format"), Data: "search_format"},
		},
		{{Text: i18n.T(lang, "cancel_button"), Data: "cancel"}},
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "search_prompt"), kb)
}

// ChooseMode handles the mode button press. Category and format modes list
// their options as buttons; the text modes prompt for a query.
func (f *SearchFlow) ChooseMode(ctx context.Context, user *model.User, mode string) error {
	lang := user.LanguageCode
	st := SearchState{Mode: mode}
	if err := f.Sessions.Set(ctx, user.TelegramID, searchFlowName, st); err != nil {
		return err
	}
	switch mode {
	case SearchByCategory:
		categories, err := service.RootCategories()
		if err != nil {
			return f.fail(ctx, user)
		}
		if len(categories) == 0 {
			return f.finish(ctx, user, nil)
		}
		kb := categoryKeyboard(lang, categories, "pick_category_", false)
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "select_category"), kb)
	case SearchByFormat:
		formats, err := service.AllFormats()
		if err != nil {
			return f.fail(ctx, user)
		}
		if len(formats) == 0 {
			return f.finish(ctx, user, nil)
		}
		var kb transport.Keyboard
		for _, fm := range formats {
			kb = append(kb, []transport.Button{{Text: fm.Name, Data: "pick_format_" + utils.FormatID(fm.ID)}})
		}
		kb = append(kb, []transport.Button{{Text: i18n.T(lang, "cancel_button"), Data: "cancel"}})
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "select_format"), kb)
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_search_query"), cancelKeyboard(lang))
	}
}

// PickCategory resolves a category button press into results.
func (f *SearchFlow) PickCategory(ctx context.Context, user *model.User, id uint64) error {
	files, err := service.FilesByCategory(id, searchResultLimit)
	if err != nil {
		return f.fail(ctx, user)
	}
	return f.finish(ctx, user, files)
}

// PickFormat resolves a format button press into results.
func (f *SearchFlow) PickFormat(ctx context.Context, user *model.User, id uint64) error {
	files, err := service.FilesByFormat(id, searchResultLimit)
	if err != nil {
		return f.fail(ctx, user)
	}
	return f.finish(ctx, user, files)
}

// Handle feeds text or cancel into the conversation.
func (f *SearchFlow) Handle(ctx context.Context, user *model.User, ev Event) error {
	lang := user.LanguageCode

	var st SearchState
	ok, err := f.Sessions.Get(ctx, user.TelegramID, searchFlowName, &st)
	if err != nil {
		return err
	}
	if !ok {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "nothing_to_cancel"), nil)
	}

	switch e := ev.(type) {
	case Cancel:
		if err := f.Sessions.Clear(ctx, user.TelegramID, searchFlowName); err != nil {
			return err
		}
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "cancelled"), nil)
	case TextInput:
		query := strings.TrimSpace(e.Text)
		if query == "" || st.Mode == "" {
			return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_search_query"), cancelKeyboard(lang))
		}
		var files []model.File
		var err error
		if st.Mode == SearchByTag {
			files, err = service.SearchFilesByTag(query, searchResultLimit)
		} else {
			files, err = service.SearchFilesByName(query, searchResultLimit)
		}
		if err != nil {
			return f.fail(ctx, user)
		}
		return f.finish(ctx, user, files)
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_search_query"), cancelKeyboard(lang))
	}
}

func (f *SearchFlow) finish(ctx context.Context, user *model.User, files []model.File) error {
	lang := user.LanguageCode
	if err := f.Sessions.Clear(ctx, user.TelegramID, searchFlowName); err != nil {
		return err
	}
	if len(files) == 0 {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "no_results"), nil)
	}
	var b strings.Builder
	b.WriteString(i18n.T(lang, "results_header", len(files)))
	for _, file := range files {
		b.WriteString("\n• ")
		b.WriteString(file.FileName)
		b.WriteString(" (")
		b.WriteString(utils.FileSizeStr(file.FileSize))
		b.WriteString(")\n  ")
		b.WriteString(file.ShareLink)
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, b.String(), nil)
}

func (f *SearchFlow) fail(ctx context.Context, user *model.User) error {
	_ = f.Sessions.Clear(ctx, user.TelegramID, searchFlowName)
	return f.Transport.SendMessage(ctx, user.TelegramID,
		i18n.T(user.LanguageCode, "error_occurred"), nil)
}
