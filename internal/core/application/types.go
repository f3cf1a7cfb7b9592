package application

// State enumerates the steps of an exchange negotiation.
type State int

const (
	StateSelectFromCurrency State = iota
	StateSelectFromNetwork
	StateSelectToCurrency
	StateSelectToNetwork
	StateEnterAmount
	StateConfirmPreview
	StateEnterAddress
	StateEnterSearchQuery
	StateCompleted
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateSelectFromCurrency:
		return "select_from_currency"
	case StateSelectFromNetwork:
		return "select_from_network"
	case StateSelectToCurrency:
		return "select_to_currency"
	case StateSelectToNetwork:
		return "select_to_network"
	case StateEnterAmount:
		return "enter_amount"
	case StateConfirmPreview:
		return "confirm_preview"
	case StateEnterAddress:
		return "enter_address"
	case StateEnterSearchQuery:
		return "enter_search_query"
	case StateCompleted:
		return "completed"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the negotiation ended, successfully or not.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateCanceled
}

// EventType enumerates the user inputs a negotiation reacts to.
type EventType int

const (
	// EventPickCurrency selects a currency, Data carries the ticker.
	EventPickCurrency EventType = iota
	// EventPickNetwork selects a network, Data carries the network id.
	EventPickNetwork
	// EventText is free text: an amount, an address or a search query.
	EventText
	// EventSearch opens the currency search sub-flow.
	EventSearch
	// EventViewAll re-lists the full catalog instead of the shortlist.
	EventViewAll
	// EventConfirm accepts the preview.
	EventConfirm
	// EventCancel aborts the negotiation from any state.
	EventCancel
)

// Event is one user input delivered to the negotiation state machine.
type Event struct {
	Type EventType
	Data string
}

// Choice is one selectable option shown to the user. Dynamic entries carry
// a literal Label; fixed buttons carry a LabelKey translated by the
// presentation layer.
type Choice struct {
	Label    string
	LabelKey string
	Data     string
}

// Reply is the display payload emitted after every state transition. The
// presentation layer resolves TextKey through the locales with Args and
// renders Choices as buttons.
type Reply struct {
	TextKey string
	Args    map[string]string
	Choices []Choice
	State   State
	// OrderID is set when the negotiation completed with a created order.
	OrderID string
}

// Terminal reports whether this reply ended the negotiation.
func (r *Reply) Terminal() bool {
	return r.State.IsTerminal()
}
