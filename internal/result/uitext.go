package result

// UIText is a user-displayable message identified by a localization key.
// Fallback holds the English text used when no translation table is wired.
type UIText struct {
	Key      string `json:"key"`
	Fallback string `json:"text"`
}

func (t UIText) String() string {
	return t.Fallback
}

var messages = map[DataError]UIText{
	ErrRequestTimeout:  {Key: "error_request_timeout", Fallback: "The request timed out."},
	ErrTooManyRequests: {Key: "error_too_many_requests", Fallback: "Oops, it seems like your quota is exceeded."},
	ErrNoInternet:      {Key: "error_no_internet", Fallback: "Couldn't reach server, please check your internet connection."},
	ErrSerialization:   {Key: "error_serialization", Fallback: "Couldn't parse data."},
	ErrRemoteUnknown:   {Key: "error_unknown", Fallback: "Oops, something went wrong."},
	ErrDiskFull:        {Key: "error_disk_full", Fallback: "The storage is full."},
	ErrLocalUnknown:    {Key: "error_unknown", Fallback: "Oops, something went wrong."},
}

// ToUIText converts a data error into the message shown to the user.
func ToUIText(err DataError) UIText {
	if msg, ok := messages[err]; ok {
		return msg
	}
	return messages[ErrRemoteUnknown]
}
