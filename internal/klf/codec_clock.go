package klf

import (
	"encoding/binary"
	"time"
)

const timeZoneSize = 64

// SetUTC is GW_SET_UTC_REQ.
type SetUTC struct {
	Time time.Time
}

func encodeSetUTC(s SetUTC) ([]byte, error) {
	b := make([]byte, 4)
	putUnix(b, s.Time)
	return b, nil
}

func decodeSetUTC(b []byte) (SetUTC, error) {
	if err := needLen(b, 4); err != nil {
		return SetUTC{}, err
	}
	return SetUTC{Time: readUnix(b)}, nil
}

// TimeZone is GW_RTC_SET_TIME_ZONE_REQ. Zone is a POSIX style rule string
// such as ":GMT+1:GMT+2:0060:(1994)040102-0:110102-0".
type TimeZone struct {
	Zone string
}

func encodeTimeZone(t TimeZone) ([]byte, error) {
	b := make([]byte, timeZoneSize)
	if err := putString(b, t.Zone); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeTimeZone(b []byte) (TimeZone, error) {
	if err := needLen(b, timeZoneSize); err != nil {
		return TimeZone{}, err
	}
	return TimeZone{Zone: readString(b[:timeZoneSize])}, nil
}

// LocalTime is GW_GET_LOCAL_TIME_CFM. Fields mirror a C struct tm: Year
// counts from 1900, Month from 0 and Weekday from Sunday.
type LocalTime struct {
	UTC      time.Time
	Second   byte
	Minute   byte
	Hour     byte
	Day      byte
	Month    byte
	Year     int16
	Weekday  byte
	YearDay  uint16
	Daylight DaylightSaving
}

// Time returns the gateway's local wall clock as a time in a fixed zone
// derived from the UTC offset.
func (l LocalTime) Time() time.Time {
	wall := time.Date(int(l.Year)+1900, time.Month(l.Month)+1, int(l.Day),
		int(l.Hour), int(l.Minute), int(l.Second), 0, time.UTC)
	if l.UTC.IsZero() {
		return wall
	}
	offset := wall.Sub(l.UTC).Round(time.Minute)
	return l.UTC.In(time.FixedZone("", int(offset.Seconds())))
}

func encodeLocalTime(l LocalTime) ([]byte, error) {
	b := make([]byte, 15)
	putUnix(b[0:4], l.UTC)
	b[4] = l.Second
	b[5] = l.Minute
	b[6] = l.Hour
	b[7] = l.Day
	b[8] = l.Month
	binary.BigEndian.PutUint16(b[9:11], uint16(l.Year))
	b[11] = l.Weekday
	binary.BigEndian.PutUint16(b[12:14], l.YearDay)
	b[14] = byte(l.Daylight)
	return b, nil
}

func decodeLocalTime(b []byte) (LocalTime, error) {
	if err := needLen(b, 15); err != nil {
		return LocalTime{}, err
	}
	return LocalTime{
		UTC:      readUnix(b[0:4]),
		Second:   b[4],
		Minute:   b[5],
		Hour:     b[6],
		Day:      b[7],
		Month:    b[8],
		Year:     int16(binary.BigEndian.Uint16(b[9:11])),
		Weekday:  b[11],
		YearDay:  binary.BigEndian.Uint16(b[12:14]),
		Daylight: DaylightSaving(int8(b[14])),
	}, nil
}
