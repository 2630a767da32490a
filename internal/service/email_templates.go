package service

import "fmt"

func verificationEmailTemplate(verifyURL, appName string) (string, string) {
	subject := fmt.Sprintf("Confirmă adresa de email pentru %s", appName)
	body := fmt.Sprintf(`Bună,

Mulțumim că te-ai înregistrat. Confirmă adresa de email deschizând acest link:
%s

Linkul expiră în 24 de ore.

Dacă nu tu ai creat contul, poți ignora acest mesaj.

Echipa %s`, verifyURL, appName)

	return subject, body
}

func magicLinkEmailTemplate(magicURL, appName string) (string, string) {
	subject := fmt.Sprintf("Autentificare în %s", appName)
	body := fmt.Sprintf(`Deschide acest link pentru a te autentifica:
%s

Linkul expiră în 10 minute și poate fi folosit o singură dată.

Dacă nu ai cerut acest link, ignoră mesajul.

Echipa %s`, magicURL, appName)

	return subject, body
}

func postApprovedEmailTemplate(hospital, postURL, appName string) (string, string) {
	subject := fmt.Sprintf("Postarea ta a fost publicată pe %s", appName)
	body := fmt.Sprintf(`Bună,

Postarea ta despre %s a fost aprobată și este acum publică:
%s

Îți mulțumim că ți-ai împărtășit experiența.

Echipa %s`, hospital, postURL, appName)

	return subject, body
}

func postRejectedEmailTemplate(hospital, policyURL, appName string) (string, string) {
	subject := fmt.Sprintf("Postarea ta pe %s nu a fost aprobată", appName)
	body := fmt.Sprintf(`Bună,

Postarea ta despre %s nu a fost aprobată de moderatori.

Regulile de moderare sunt descrise aici:
%s

Poți trimite oricând o postare nouă care respectă aceste reguli.

Echipa %s`, hospital, policyURL, appName)

	return subject, body
}
