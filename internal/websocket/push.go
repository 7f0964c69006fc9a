package websocket

// NavigatePayload - команда браузеру перейти по адресу
type NavigatePayload struct {
	Path     string `json:"path"`
	External bool   `json:"external,omitempty"`
}

// ClipboardPayload - текст для записи в буфер обмена браузера
type ClipboardPayload struct {
	Text string `json:"text"`
}

// Navigator переводит подключенные браузеры на другую страницу
type Navigator struct {
	Manager *Manager
}

// Navigate - переход внутри приложения
func (n Navigator) Navigate(path string) {
	n.Manager.Broadcast(NavigateType, NavigatePayload{Path: path})
}

// Push - то же, что Navigate
func (n Navigator) Push(path string) {
	n.Navigate(path)
}

// Redirect - переход на внешний адрес (платежный шлюз)
func (n Navigator) Redirect(url string) {
	n.Manager.Broadcast(NavigateType, NavigatePayload{Path: url, External: true})
}

// Clipboard просит браузер скопировать текст
type Clipboard struct {
	Manager *Manager
}

func (c Clipboard) WriteText(text string) error {
	c.Manager.Broadcast(ClipboardType, ClipboardPayload{Text: text})
	return nil
}
