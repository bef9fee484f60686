package klf

const passwordSize = 32

// MaxPasswordLength is the longest password the gateway accepts.
const MaxPasswordLength = passwordSize - 1

// PasswordEnter is GW_PASSWORD_ENTER_REQ.
type PasswordEnter struct {
	Password string
}

func encodePasswordEnter(p PasswordEnter) ([]byte, error) {
	b := make([]byte, passwordSize)
	if err := putString(b, p.Password); err != nil {
		return nil, err
	}
	return b, nil
}

func decodePasswordEnter(b []byte) (PasswordEnter, error) {
	if err := needLen(b, passwordSize); err != nil {
		return PasswordEnter{}, err
	}
	return PasswordEnter{Password: readString(b[:passwordSize])}, nil
}

// PasswordChange is GW_PASSWORD_CHANGE_REQ.
type PasswordChange struct {
	Current string
	New     string
}

func encodePasswordChange(p PasswordChange) ([]byte, error) {
	b := make([]byte, 2*passwordSize)
	if err := putString(b[:passwordSize], p.Current); err != nil {
		return nil, err
	}
	if err := putString(b[passwordSize:], p.New); err != nil {
		return nil, err
	}
	return b, nil
}

func decodePasswordChange(b []byte) (PasswordChange, error) {
	if err := needLen(b, 2*passwordSize); err != nil {
		return PasswordChange{}, err
	}
	return PasswordChange{
		Current: readString(b[:passwordSize]),
		New:     readString(b[passwordSize : 2*passwordSize]),
	}, nil
}

// PasswordChanged is GW_PASSWORD_CHANGE_NTF, sent to all other connected
// clients after a successful change.
type PasswordChanged struct {
	Password string
}

func encodePasswordChanged(p PasswordChanged) ([]byte, error) {
	b := make([]byte, passwordSize)
	if err := putString(b, p.Password); err != nil {
		return nil, err
	}
	return b, nil
}

func decodePasswordChanged(b []byte) (PasswordChanged, error) {
	if err := needLen(b, passwordSize); err != nil {
		return PasswordChanged{}, err
	}
	return PasswordChanged{Password: readString(b[:passwordSize])}, nil
}
