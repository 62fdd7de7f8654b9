package models

import "database/sql"

type Setting struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Company        string  `json:"company"`
	Logo           string  `json:"logo"`
	ActivationFee  float64 `json:"activation_fee"`
	TillName       string  `json:"till_name"`
	TillNumber     string  `json:"till_number"`
	MinWithdraw    float64 `json:"min_withdraw"`
	MaxWithdraw    float64 `json:"max_withdraw"`
	WithdrawCharge float64 `json:"withdraw_charge"`
	Maintenance    bool    `json:"maintenance"`
	ClosedRegister bool    `json:"closed_register"`
	LinkCS         string  `json:"link_cs"`
	LinkApp        string  `json:"link_app"`
}

func GetSetting(db *sql.DB) (*Setting, error) {
	setting := &Setting{}
	row := db.QueryRow("SELECT id, name, company, logo, activation_fee, till_name, till_number, min_withdraw, max_withdraw, withdraw_charge, maintenance, closed_register, link_cs, link_app FROM settings LIMIT 1")
	err := row.Scan(
		&setting.ID,
		&setting.Name,
		&setting.Company,
		&setting.Logo,
		&setting.ActivationFee,
		&setting.TillName,
		&setting.TillNumber,
		&setting.MinWithdraw,
		&setting.MaxWithdraw,
		&setting.WithdrawCharge,
		&setting.Maintenance,
		&setting.ClosedRegister,
		&setting.LinkCS,
		&setting.LinkApp,
	)
	if err != nil {
		return nil, err
	}
	return setting, nil
}
